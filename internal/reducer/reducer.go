package reducer

import "github.com/roach88/tcademo/internal/effect"

// Reducer is a pure transition function over state S and actions A.
type Reducer[S, A any] interface {
	Reduce(state S, action A) (S, effect.Effect[A])
}

// Func adapts a function to Reducer.
type Func[S, A any] func(state S, action A) (S, effect.Effect[A])

// Reduce implements Reducer.
func (f Func[S, A]) Reduce(state S, action A) (S, effect.Effect[A]) {
	return f(state, action)
}

// Combine returns a reducer that runs rs in order on the same action. Each
// reducer sees the state produced by the previous one; effects are merged in
// the same order.
func Combine[S, A any](rs ...Reducer[S, A]) Reducer[S, A] {
	reducers := append([]Reducer[S, A](nil), rs...)
	return Func[S, A](func(state S, action A) (S, effect.Effect[A]) {
		effects := make([]effect.Effect[A], 0, len(reducers))
		for _, r := range reducers {
			var e effect.Effect[A]
			state, e = r.Reduce(state, action)
			effects = append(effects, e)
		}
		return state, effect.Merge(effects...)
	})
}

// Empty is a reducer that ignores every action.
func Empty[S, A any]() Reducer[S, A] {
	return Func[S, A](func(state S, _ A) (S, effect.Effect[A]) {
		return state, effect.None[A]()
	})
}

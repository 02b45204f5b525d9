package effect

import (
	"context"
	"slices"
)

// Producer is asynchronous work. It emits actions through send and returns
// when its work is done or ctx is cancelled. Returning after cancellation is
// not an error.
type Producer[A any] func(ctx context.Context, send func(A)) error

// Kind is the kind of an Op.
type Kind int

const (
	// KindSend feeds actions back to the store before any queued action.
	KindSend Kind = iota + 1
	// KindRun starts a producer on the scheduler.
	KindRun
	// KindCancel cancels running work by ID.
	KindCancel
)

func (k Kind) String() string {
	switch k {
	case KindSend:
		return "send"
	case KindRun:
		return "run"
	case KindCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Op is one step of an Effect.
type Op[A any] struct {
	Kind     Kind
	Actions  []A         // KindSend
	Producer Producer[A] // KindRun
	ID       ID          // KindRun (zero if not cancellable), KindCancel
}

// Effect is an ordered list of operations returned by a reducer.
// The zero value is the empty effect.
type Effect[A any] struct {
	ops []Op[A]
}

// None returns the empty effect.
func None[A any]() Effect[A] {
	return Effect[A]{}
}

// Send returns an effect that feeds actions back into the store, in order,
// right after the current action.
func Send[A any](actions ...A) Effect[A] {
	if len(actions) == 0 {
		return Effect[A]{}
	}
	return Effect[A]{ops: []Op[A]{{Kind: KindSend, Actions: slices.Clone(actions)}}}
}

// Run returns an effect that runs p on the scheduler.
func Run[A any](p Producer[A]) Effect[A] {
	return Effect[A]{ops: []Op[A]{{Kind: KindRun, Producer: p}}}
}

// Cancel returns an effect that cancels work running under id.
func Cancel[A any](id ID) Effect[A] {
	return Effect[A]{ops: []Op[A]{{Kind: KindCancel, ID: id}}}
}

// Merge concatenates effects in order.
func Merge[A any](effects ...Effect[A]) Effect[A] {
	var n int
	for _, e := range effects {
		n += len(e.ops)
	}
	if n == 0 {
		return Effect[A]{}
	}
	ops := make([]Op[A], 0, n)
	for _, e := range effects {
		ops = append(ops, e.ops...)
	}
	return Effect[A]{ops: ops}
}

// Cancellable marks every Run operation of e as running under id.
// Starting under an id that is already running replaces the older task.
func (e Effect[A]) Cancellable(id ID) Effect[A] {
	return e.rewrite(func(op Op[A]) Op[A] {
		if op.Kind == KindRun {
			op.ID = id
		}
		return op
	})
}

// Scoped nests every ID mentioned by e under prefix.
func (e Effect[A]) Scoped(prefix string) Effect[A] {
	return e.rewrite(func(op Op[A]) Op[A] {
		op.ID = op.ID.Scoped(prefix)
		return op
	})
}

// Merge appends other to e.
func (e Effect[A]) Merge(other Effect[A]) Effect[A] {
	return Merge(e, other)
}

// IsNone reports whether e does nothing.
func (e Effect[A]) IsNone() bool {
	return len(e.ops) == 0
}

// Ops returns the operations of e in order.
func (e Effect[A]) Ops() []Op[A] {
	return slices.Clone(e.ops)
}

// Actions returns every action e sends synchronously, in order.
func (e Effect[A]) Actions() []A {
	var out []A
	for _, op := range e.ops {
		if op.Kind == KindSend {
			out = append(out, op.Actions...)
		}
	}
	return out
}

// Started returns the IDs of cancellable Run operations, in order.
func (e Effect[A]) Started() []ID {
	return e.ids(KindRun)
}

// Cancelled returns the IDs of Cancel operations, in order.
func (e Effect[A]) Cancelled() []ID {
	return e.ids(KindCancel)
}

func (e Effect[A]) ids(kind Kind) []ID {
	var out []ID
	for _, op := range e.ops {
		if op.Kind == kind && !op.ID.IsZero() {
			out = append(out, op.ID)
		}
	}
	return out
}

func (e Effect[A]) rewrite(fn func(Op[A]) Op[A]) Effect[A] {
	if len(e.ops) == 0 {
		return e
	}
	ops := make([]Op[A], len(e.ops))
	for i, op := range e.ops {
		ops[i] = fn(op)
	}
	return Effect[A]{ops: ops}
}

// Map lifts an effect over child actions into an effect over parent actions.
func Map[A, B any](e Effect[A], f func(A) B) Effect[B] {
	if len(e.ops) == 0 {
		return Effect[B]{}
	}
	ops := make([]Op[B], len(e.ops))
	for i, op := range e.ops {
		mapped := Op[B]{Kind: op.Kind, ID: op.ID}
		switch op.Kind {
		case KindSend:
			mapped.Actions = make([]B, len(op.Actions))
			for j, a := range op.Actions {
				mapped.Actions[j] = f(a)
			}
		case KindRun:
			p := op.Producer
			mapped.Producer = func(ctx context.Context, send func(B)) error {
				return p(ctx, func(a A) { send(f(a)) })
			}
		}
		ops[i] = mapped
	}
	return Effect[B]{ops: ops}
}

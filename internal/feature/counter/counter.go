// Package counter is an integer count with a child button that bumps it
// through a delegate action.
package counter

import (
	"github.com/roach88/tcademo/internal/effect"
	"github.com/roach88/tcademo/internal/feature/countbutton"
	"github.com/roach88/tcademo/internal/reducer"
)

// State is the count and its button.
type State struct {
	Count  int               `json:"count"`
	Button countbutton.State `json:"button"`
}

// Action is the closed set of counter actions.
type Action interface {
	counterAction()
}

// Increment adds one.
type Increment struct{}

// Decrement subtracts one.
type Decrement struct{}

// Reset returns the count to the feature's initial value.
type Reset struct{}

// Button wraps an action for the count button.
type Button struct {
	Action countbutton.Action
}

func (Increment) counterAction() {}
func (Decrement) counterAction() {}
func (Reset) counterAction()     {}
func (Button) counterAction()    {}

// ButtonPath routes Button actions to the count button.
var ButtonPath = reducer.Case[Action](
	func(a countbutton.Action) Button { return Button{Action: a} },
	func(b Button) countbutton.Action { return b.Action },
)

var buttonLens = reducer.Lens[State, countbutton.State]{
	Get: func(s State) countbutton.State { return s.Button },
	Set: func(s State, b countbutton.State) State { s.Button = b; return s },
}

// Feature configures the counter.
type Feature struct {
	// Initial is the count at construction and after Reset.
	Initial int
	// Overflow decides what Increment does at the maximum int and
	// Decrement at the minimum.
	Overflow Overflow
}

// InitialState returns the counter's starting state.
func (f Feature) InitialState() State {
	return State{Count: f.Initial}
}

// Reducer returns the counter reducer: the button first, then the
// delegate handler, then the counter's own actions.
func (f Feature) Reducer() reducer.Reducer[State, Action] {
	return reducer.Combine[State, Action](
		reducer.Scope("button", buttonLens, ButtonPath, reducer.Reducer[countbutton.State, countbutton.Action](countbutton.Feature{})),
		reducer.OnDelegate[State, Action, countbutton.Action, countbutton.Delegate](ButtonPath, f.onButton),
		reducer.Func[State, Action](f.reduce),
	)
}

func (f Feature) onButton(state State, d countbutton.Delegate) (State, effect.Effect[Action]) {
	switch d.Event {
	case countbutton.CountChanged:
		state.Count = Step(state.Count, 1, f.Overflow)
	}
	return state, effect.None[Action]()
}

func (f Feature) reduce(state State, action Action) (State, effect.Effect[Action]) {
	switch action.(type) {
	case Increment:
		state.Count = Step(state.Count, 1, f.Overflow)
	case Decrement:
		state.Count = Step(state.Count, -1, f.Overflow)
	case Reset:
		state.Count = f.Initial
	}
	return state, effect.None[Action]()
}

// Package countbutton is a stateless button that tells its parent it was
// tapped. It owns no count; the parent decides what a tap means.
package countbutton

import (
	"github.com/roach88/tcademo/internal/effect"
)

// State is empty. The button has nothing to remember.
type State struct{}

// Action is the closed set of count button actions.
type Action interface {
	countButtonAction()
}

// Tapped is the user pressing the button.
type Tapped struct{}

// DelegateEvent is what the button reports to its parent.
type DelegateEvent int

const (
	// CountChanged asks the parent to bump its count.
	CountChanged DelegateEvent = iota + 1
)

func (e DelegateEvent) String() string {
	switch e {
	case CountChanged:
		return "count-changed"
	default:
		return "unknown"
	}
}

// Delegate carries an event up to the parent. The button ignores it.
type Delegate struct {
	Event DelegateEvent
}

func (Tapped) countButtonAction()   {}
func (Delegate) countButtonAction() {}

// Feature reduces count button actions.
type Feature struct{}

// Reduce implements reducer.Reducer.
func (Feature) Reduce(state State, action Action) (State, effect.Effect[Action]) {
	switch action.(type) {
	case Tapped:
		return state, effect.Send[Action](Delegate{Event: CountChanged})
	default:
		return state, effect.None[Action]()
	}
}

// Package todo is one item of a todo list.
package todo

import (
	"github.com/google/uuid"

	"github.com/roach88/tcademo/internal/effect"
)

// State is a single todo. ID never changes after creation.
type State struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	IsComplete  bool      `json:"is_complete"`
}

// Key implements identified.Identifiable.
func (s State) Key() uuid.UUID {
	return s.ID
}

// Action is the closed set of todo actions.
type Action interface {
	todoAction()
}

// CheckboxTapped flips IsComplete.
type CheckboxTapped struct{}

// TextChanged replaces Description.
type TextChanged struct {
	Text string
}

func (CheckboxTapped) todoAction() {}
func (TextChanged) todoAction()    {}

// Feature reduces todo actions.
type Feature struct{}

// Reduce implements reducer.Reducer.
func (Feature) Reduce(state State, action Action) (State, effect.Effect[Action]) {
	switch a := action.(type) {
	case CheckboxTapped:
		state.IsComplete = !state.IsComplete
	case TextChanged:
		state.Description = a.Text
	}
	return state, effect.None[Action]()
}

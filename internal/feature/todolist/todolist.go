// Package todolist is an ordered list of todos plus a draft for the next one.
package todolist

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/roach88/tcademo/internal/effect"
	"github.com/roach88/tcademo/internal/feature/todo"
	"github.com/roach88/tcademo/internal/identified"
	"github.com/roach88/tcademo/internal/reducer"
)

// Todos is the list type: todos keyed by ID, in insertion order.
type Todos = identified.Array[uuid.UUID, todo.State]

// State is the list and the draft text.
type State struct {
	Todos Todos  `json:"todos"`
	Draft string `json:"draft"`
}

// Completed returns how many todos are complete.
func (s State) Completed() int {
	var n int
	for _, t := range s.Todos.All() {
		if t.IsComplete {
			n++
		}
	}
	return n
}

// Action is the closed set of todo list actions.
type Action interface {
	todoListAction()
}

// DraftChanged replaces the draft text.
type DraftChanged struct {
	Text string
}

// AddTapped appends the draft as a new todo and clears the draft. A draft
// that is blank after trimming is ignored.
type AddTapped struct{}

// Remove deletes the todo with ID, if present.
type Remove struct {
	ID uuid.UUID
}

// Toggle flips completion of the todo with ID, if present.
type Toggle struct {
	ID uuid.UUID
}

// Delete removes the todos at the given positions. Positions out of range
// are ignored.
type Delete struct {
	Offsets []int
}

// Todo routes an action to the todo with ID.
type Todo struct {
	ID     uuid.UUID
	Action todo.Action
}

func (DraftChanged) todoListAction() {}
func (AddTapped) todoListAction()    {}
func (Remove) todoListAction()       {}
func (Toggle) todoListAction()       {}
func (Delete) todoListAction()       {}
func (Todo) todoListAction()         {}

// IDGenerator hands out identifiers for new todos.
type IDGenerator interface {
	New() uuid.UUID
}

// UUIDv7 generates time-ordered random identifiers.
type UUIDv7 struct{}

// New implements IDGenerator.
func (UUIDv7) New() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// TodoPath routes Todo actions to list elements.
var TodoPath = reducer.ElementPath[Action, uuid.UUID, todo.Action]{
	Extract: func(a Action) (uuid.UUID, todo.Action, bool) {
		t, ok := a.(Todo)
		return t.ID, t.Action, ok
	},
	Embed: func(id uuid.UUID, a todo.Action) Action {
		return Todo{ID: id, Action: a}
	},
}

var todosLens = reducer.Lens[State, Todos]{
	Get: func(s State) Todos { return s.Todos },
	Set: func(s State, t Todos) State { s.Todos = t; return s },
}

// Feature configures the todo list.
type Feature struct {
	IDs IDGenerator
}

// Reducer returns the list reducer: element actions first, then the list's
// own actions.
func (f Feature) Reducer() reducer.Reducer[State, Action] {
	return reducer.Combine[State, Action](
		reducer.ForEach("todos", todosLens, TodoPath, reducer.Reducer[todo.State, todo.Action](todo.Feature{})),
		reducer.Func[State, Action](f.reduce),
	)
}

func (f Feature) reduce(state State, action Action) (State, effect.Effect[Action]) {
	switch a := action.(type) {
	case DraftChanged:
		state.Draft = a.Text

	case AddTapped:
		if IsBlank(state.Draft) {
			return state, effect.None[Action]()
		}
		next, err := state.Todos.Append(todo.State{ID: f.ids().New(), Description: state.Draft})
		if err != nil {
			slog.Error("todo not added", "error", err)
			return state, effect.None[Action]()
		}
		state.Todos = next
		state.Draft = ""

	case Remove:
		state.Todos, _ = state.Todos.Remove(a.ID)

	case Toggle:
		state.Todos, _ = state.Todos.Update(a.ID, func(t todo.State) todo.State {
			t.IsComplete = !t.IsComplete
			return t
		})

	case Delete:
		state.Todos = state.Todos.RemoveAt(a.Offsets...)
	}
	return state, effect.None[Action]()
}

func (f Feature) ids() IDGenerator {
	if f.IDs == nil {
		return UUIDv7{}
	}
	return f.IDs
}

// IsBlank reports whether s is empty after trimming spaces and tabs.
// Line breaks count as content.
func IsBlank(s string) bool {
	return strings.TrimFunc(s, func(r rune) bool {
		return r == '\t' || unicode.Is(unicode.Zs, r)
	}) == ""
}

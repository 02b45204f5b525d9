// Package app composes the counter, todo list, and timer features into one
// application state tree selected by tab.
package app

import (
	"fmt"

	"github.com/roach88/tcademo/internal/config"
	"github.com/roach88/tcademo/internal/effect"
	"github.com/roach88/tcademo/internal/feature/counter"
	"github.com/roach88/tcademo/internal/feature/timer"
	"github.com/roach88/tcademo/internal/feature/todolist"
	"github.com/roach88/tcademo/internal/reducer"
	"github.com/roach88/tcademo/internal/store"
)

// Tab is the selected feature.
type Tab string

// Tab names, as used in configuration and the action codec.
const (
	TabCounter Tab = "counter"
	TabTodos   Tab = "todos"
	TabTimer   Tab = "timer"
)

// Tabs lists every tab in display order.
var Tabs = []Tab{TabCounter, TabTodos, TabTimer}

// ParseTab parses a tab name.
func ParseTab(s string) (Tab, error) {
	for _, t := range Tabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

// State is the whole application state.
type State struct {
	Counter counter.State  `json:"counter"`
	Todos   todolist.State `json:"todos"`
	Timer   timer.State    `json:"timer"`
	Tab     Tab            `json:"tab"`
}

// Action is the closed set of application actions.
type Action interface {
	appAction()
	fmt.Stringer
}

// Counter wraps a counter action.
type Counter struct {
	Action counter.Action
}

// Todos wraps a todo list action.
type Todos struct {
	Action todolist.Action
}

// Timer wraps a timer action.
type Timer struct {
	Action timer.Action
}

// TabSelected switches the selected tab.
type TabSelected struct {
	Tab Tab
}

func (Counter) appAction()     {}
func (Todos) appAction()       {}
func (Timer) appAction()       {}
func (TabSelected) appAction() {}

func (a Counter) String() string     { return Format(a) }
func (a Todos) String() string       { return Format(a) }
func (a Timer) String() string       { return Format(a) }
func (a TabSelected) String() string { return Format(a) }

// Paths route wrapped actions to each feature.
var (
	CounterPath = reducer.Case[Action](
		func(a counter.Action) Counter { return Counter{Action: a} },
		func(w Counter) counter.Action { return w.Action },
	)
	TodosPath = reducer.Case[Action](
		func(a todolist.Action) Todos { return Todos{Action: a} },
		func(w Todos) todolist.Action { return w.Action },
	)
	TimerPath = reducer.Case[Action](
		func(a timer.Action) Timer { return Timer{Action: a} },
		func(w Timer) timer.Action { return w.Action },
	)
)

var (
	counterLens = reducer.Lens[State, counter.State]{
		Get: func(s State) counter.State { return s.Counter },
		Set: func(s State, c counter.State) State { s.Counter = c; return s },
	}
	todosLens = reducer.Lens[State, todolist.State]{
		Get: func(s State) todolist.State { return s.Todos },
		Set: func(s State, c todolist.State) State { s.Todos = c; return s },
	}
	timerLens = reducer.Lens[State, timer.State]{
		Get: func(s State) timer.State { return s.Timer },
		Set: func(s State, c timer.State) State { s.Timer = c; return s },
	}
)

// Dependencies are the non-deterministic inputs of the application.
type Dependencies struct {
	Clock effect.Clock
	IDs   todolist.IDGenerator
}

// Feature is the configured application.
type Feature struct {
	Counter    counter.Feature
	Todos      todolist.Feature
	Timer      timer.Feature
	InitialTab Tab
}

// New configures the application from cfg.
func New(cfg config.Config, deps Dependencies) (Feature, error) {
	tab, err := ParseTab(cfg.Tab)
	if err != nil {
		return Feature{}, err
	}
	if deps.Clock == nil {
		deps.Clock = effect.RealClock{}
	}
	if deps.IDs == nil {
		deps.IDs = todolist.UUIDv7{}
	}
	return Feature{
		Counter:    counter.Feature{Initial: cfg.Counter.Initial, Overflow: cfg.Counter.Overflow},
		Todos:      todolist.Feature{IDs: deps.IDs},
		Timer:      timer.Feature{Clock: deps.Clock, Period: cfg.Timer.Period},
		InitialTab: tab,
	}, nil
}

// InitialState returns the state the store starts with.
func (f Feature) InitialState() State {
	return State{
		Counter: f.Counter.InitialState(),
		Tab:     f.InitialTab,
	}
}

// Reducer returns the application reducer: each feature on its own slot,
// then tab selection.
func (f Feature) Reducer() reducer.Reducer[State, Action] {
	return reducer.Combine[State, Action](
		reducer.Scope("counter", counterLens, CounterPath, f.Counter.Reducer()),
		reducer.Scope("todos", todosLens, TodosPath, f.Todos.Reducer()),
		reducer.Scope("timer", timerLens, TimerPath, reducer.Reducer[timer.State, timer.Action](f.Timer)),
		reducer.Func[State, Action](reduce),
	)
}

func reduce(state State, action Action) (State, effect.Effect[Action]) {
	switch a := action.(type) {
	case TabSelected:
		state.Tab = a.Tab
	}
	return state, effect.None[Action]()
}

// Store is the application store.
type Store = store.Store[State, Action]

// NewStore builds a store for f.
func (f Feature) NewStore(opts ...store.Option[State, Action]) *Store {
	return store.New(f.InitialState(), f.Reducer(), opts...)
}

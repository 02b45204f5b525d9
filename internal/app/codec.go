package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/tcademo/internal/feature/countbutton"
	"github.com/roach88/tcademo/internal/feature/counter"
	"github.com/roach88/tcademo/internal/feature/timer"
	"github.com/roach88/tcademo/internal/feature/todo"
	"github.com/roach88/tcademo/internal/feature/todolist"
)

// The text codec is the wire form of actions for the REPL, scenario files,
// and the journal. One action per line:
//
//	counter.increment | counter.decrement | counter.reset
//	counter.button.tap | counter.button.delegate count-changed
//	todos.draft <text>
//	todos.add
//	todos.remove <uuid> | todos.toggle <uuid>
//	todos.delete <index>[,<index>...]
//	todos.todo <uuid> toggle | todos.todo <uuid> text <text>
//	timer.start | timer.stop | timer.reset | timer.tick
//	tab counter|todos|timer
//
// Free text runs to the end of the line and keeps its spaces.

// ParseError reports a line the codec cannot read.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse action %q: %s", e.Input, e.Reason)
}

// Verbs lists the command words the codec accepts, for completion.
var Verbs = []string{
	"counter.increment", "counter.decrement", "counter.reset",
	"counter.button.tap", "counter.button.delegate",
	"todos.draft", "todos.add", "todos.remove", "todos.toggle", "todos.delete", "todos.todo",
	"timer.start", "timer.stop", "timer.reset", "timer.tick",
	"tab",
}

// Parse reads one action.
func Parse(line string) (Action, error) {
	line = strings.TrimLeft(line, " \t")
	verb, rest, hasRest := strings.Cut(line, " ")
	arg := strings.TrimSpace(rest)

	fail := func(reason string) (Action, error) {
		return nil, &ParseError{Input: line, Reason: reason}
	}
	noArg := func(a Action) (Action, error) {
		if arg != "" {
			return fail("unexpected argument")
		}
		return a, nil
	}

	switch verb {
	case "counter.increment":
		return noArg(Counter{Action: counter.Increment{}})
	case "counter.decrement":
		return noArg(Counter{Action: counter.Decrement{}})
	case "counter.reset":
		return noArg(Counter{Action: counter.Reset{}})
	case "counter.button.tap":
		return noArg(Counter{Action: counter.Button{Action: countbutton.Tapped{}}})
	case "counter.button.delegate":
		if arg != countbutton.CountChanged.String() {
			return fail("unknown delegate event")
		}
		return Counter{Action: counter.Button{Action: countbutton.Delegate{Event: countbutton.CountChanged}}}, nil

	case "todos.draft":
		text := ""
		if hasRest {
			text = rest
		}
		return Todos{Action: todolist.DraftChanged{Text: text}}, nil
	case "todos.add":
		return noArg(Todos{Action: todolist.AddTapped{}})
	case "todos.remove", "todos.toggle":
		id, err := uuid.Parse(arg)
		if err != nil {
			return fail("invalid id")
		}
		if verb == "todos.remove" {
			return Todos{Action: todolist.Remove{ID: id}}, nil
		}
		return Todos{Action: todolist.Toggle{ID: id}}, nil
	case "todos.delete":
		offsets, err := parseOffsets(arg)
		if err != nil {
			return fail(err.Error())
		}
		return Todos{Action: todolist.Delete{Offsets: offsets}}, nil
	case "todos.todo":
		return parseTodo(line, rest)

	case "timer.start":
		return noArg(Timer{Action: timer.Start{}})
	case "timer.stop":
		return noArg(Timer{Action: timer.Stop{}})
	case "timer.reset":
		return noArg(Timer{Action: timer.Reset{}})
	case "timer.tick":
		return noArg(Timer{Action: timer.Tick{}})

	case "tab":
		tab, err := ParseTab(arg)
		if err != nil {
			return fail(err.Error())
		}
		return TabSelected{Tab: tab}, nil

	case "":
		return fail("empty action")
	default:
		return fail("unknown action")
	}
}

func parseTodo(line, rest string) (Action, error) {
	fail := func(reason string) (Action, error) {
		return nil, &ParseError{Input: line, Reason: reason}
	}
	rawID, tail, _ := strings.Cut(strings.TrimLeft(rest, " "), " ")
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fail("invalid id")
	}
	sub, text, hasText := strings.Cut(tail, " ")
	switch sub {
	case "toggle":
		if strings.TrimSpace(text) != "" {
			return fail("unexpected argument")
		}
		return Todos{Action: todolist.Todo{ID: id, Action: todo.CheckboxTapped{}}}, nil
	case "text":
		if !hasText {
			text = ""
		}
		return Todos{Action: todolist.Todo{ID: id, Action: todo.TextChanged{Text: text}}}, nil
	default:
		return fail("unknown todo action")
	}
}

func parseOffsets(arg string) ([]int, error) {
	if arg == "" {
		return nil, fmt.Errorf("missing offsets")
	}
	var offsets []int
	for _, field := range strings.Split(arg, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid offset %q", field)
		}
		offsets = append(offsets, n)
	}
	return offsets, nil
}

// MustParse is Parse for literals in tests and tables. It panics on error.
func MustParse(line string) Action {
	a, err := Parse(line)
	if err != nil {
		panic(err)
	}
	return a
}

// Format writes an action in the codec's text form.
// Parse(Format(a)) equals a for every action Parse can produce.
func Format(a Action) string {
	switch a := a.(type) {
	case Counter:
		return formatCounter(a.Action)
	case Todos:
		return formatTodos(a.Action)
	case Timer:
		return formatTimer(a.Action)
	case TabSelected:
		return "tab " + string(a.Tab)
	default:
		return fmt.Sprintf("unknown(%T)", a)
	}
}

func formatCounter(a counter.Action) string {
	switch a := a.(type) {
	case counter.Increment:
		return "counter.increment"
	case counter.Decrement:
		return "counter.decrement"
	case counter.Reset:
		return "counter.reset"
	case counter.Button:
		switch b := a.Action.(type) {
		case countbutton.Tapped:
			return "counter.button.tap"
		case countbutton.Delegate:
			return "counter.button.delegate " + b.Event.String()
		}
	}
	return fmt.Sprintf("counter.unknown(%T)", a)
}

func formatTodos(a todolist.Action) string {
	switch a := a.(type) {
	case todolist.DraftChanged:
		if a.Text == "" {
			return "todos.draft"
		}
		return "todos.draft " + a.Text
	case todolist.AddTapped:
		return "todos.add"
	case todolist.Remove:
		return "todos.remove " + a.ID.String()
	case todolist.Toggle:
		return "todos.toggle " + a.ID.String()
	case todolist.Delete:
		parts := make([]string, len(a.Offsets))
		for i, o := range a.Offsets {
			parts[i] = strconv.Itoa(o)
		}
		return "todos.delete " + strings.Join(parts, ",")
	case todolist.Todo:
		switch t := a.Action.(type) {
		case todo.CheckboxTapped:
			return "todos.todo " + a.ID.String() + " toggle"
		case todo.TextChanged:
			if t.Text == "" {
				return "todos.todo " + a.ID.String() + " text"
			}
			return "todos.todo " + a.ID.String() + " text " + t.Text
		}
	}
	return fmt.Sprintf("todos.unknown(%T)", a)
}

func formatTimer(a timer.Action) string {
	switch a.(type) {
	case timer.Start:
		return "timer.start"
	case timer.Stop:
		return "timer.stop"
	case timer.Reset:
		return "timer.reset"
	case timer.Tick:
		return "timer.tick"
	}
	return fmt.Sprintf("timer.unknown(%T)", a)
}

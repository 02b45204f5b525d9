package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/tcademo/internal/app"
	"github.com/roach88/tcademo/internal/feature/counter"
	"github.com/roach88/tcademo/internal/feature/timer"
	"github.com/roach88/tcademo/internal/feature/todolist"
	"github.com/roach88/tcademo/internal/history"
	"github.com/roach88/tcademo/internal/ir"
	"github.com/roach88/tcademo/internal/store"
)

// errQuit ends the console loop.
var errQuit = errors.New("quit")

// consoleCommands are the console's own words, next to the action verbs.
var consoleCommands = []string{"help", "state", "view", "history", "exit", "quit"}

// console evaluates one line at a time against a store. It renders each
// feature through its own scoped view.
type console struct {
	store   *app.Store
	history *history.Buffer[app.State]
	out     io.Writer

	counter *store.View[counter.State, counter.Action]
	todos   *store.View[todolist.State, todolist.Action]
	timer   *store.View[timer.State, timer.Action]
}

func newConsole(st *app.Store, hist *history.Buffer[app.State], out io.Writer) *console {
	return &console{
		store:   st,
		history: hist,
		out:     out,
		counter: store.Scope(st,
			func(s app.State) counter.State { return s.Counter },
			func(a counter.Action) app.Action { return app.Counter{Action: a} }),
		todos: store.Scope(st,
			func(s app.State) todolist.State { return s.Todos },
			func(a todolist.Action) app.Action { return app.Todos{Action: a} }),
		timer: store.Scope(st,
			func(s app.State) timer.State { return s.Timer },
			func(a timer.Action) app.Action { return app.Timer{Action: a} }),
	}
}

// Eval runs one console line. It returns errQuit on exit or quit.
// Action lines go to the codec untrimmed on the right: free text keeps its
// trailing spaces.
func (c *console) Eval(line string) error {
	word, arg, _ := strings.Cut(strings.TrimSpace(line), " ")

	switch word {
	case "":
		return nil
	case "exit", "quit":
		return errQuit
	case "help":
		fmt.Fprintf(c.out, "console: %s\n", strings.Join(consoleCommands, " "))
		fmt.Fprintf(c.out, "actions: %s\n", strings.Join(app.Verbs, " "))
		return nil
	case "state":
		data, err := ir.MarshalCanonical(c.store.State())
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%d %s\n", c.store.Seq(), data)
		return nil
	case "view":
		c.render()
		return nil
	case "history":
		return c.printHistory(strings.TrimSpace(arg))
	}

	action, err := app.Parse(line)
	if err != nil {
		return err
	}
	if !c.store.Send(action) {
		return errors.New("store closed")
	}
	c.render()
	return nil
}

func (c *console) printHistory(arg string) error {
	n := 10
	if arg != "" {
		var err error
		n, err = strconv.Atoi(arg)
		if err != nil || n <= 0 {
			return fmt.Errorf("history: invalid count %q", arg)
		}
	}
	for _, snap := range c.history.Last(n) {
		fp, err := ir.Fingerprint(snap.State)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%6d  %s  %s\n", snap.Seq, fp, summarize(snap.State))
	}
	return nil
}

// render prints the selected tab.
func (c *console) render() {
	tab := c.store.State().Tab
	fmt.Fprintf(c.out, "[%s] seq %d\n", tab, c.store.Seq())
	switch tab {
	case app.TabCounter:
		fmt.Fprintf(c.out, "  count: %d\n", c.counter.State().Count)
	case app.TabTodos:
		s := c.todos.State()
		fmt.Fprintf(c.out, "  %d/%d done, draft %q\n", s.Completed(), s.Todos.Len(), s.Draft)
		for i, t := range s.Todos.All() {
			mark := " "
			if t.IsComplete {
				mark = "x"
			}
			fmt.Fprintf(c.out, "  %d [%s] %s  %s\n", i, mark, t.Description, t.ID)
		}
	case app.TabTimer:
		s := c.timer.State()
		status := "stopped"
		if s.Running {
			status = "running"
		}
		fmt.Fprintf(c.out, "  %s %s\n", s.Formatted(), status)
	}
}

// summarize is the one-line form used by history.
func summarize(s app.State) string {
	return fmt.Sprintf("tab=%s count=%d todos=%d timer=%s",
		s.Tab, s.Counter.Count, s.Todos.Todos.Len(), s.Timer.Formatted())
}

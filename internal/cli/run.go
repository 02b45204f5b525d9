package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ergochat/readline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/roach88/tcademo/internal/app"
	"github.com/roach88/tcademo/internal/effect"
	"github.com/roach88/tcademo/internal/history"
	"github.com/roach88/tcademo/internal/metrics"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database    string
	IDs         string
	MetricsAddr string
	Script      string
	HistoryFile string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start an interactive console on a live store",
		Long: `Start a store with a real clock and read actions from a console.

Every line is either an action (see "help") or a console command:
state, view, history [n], help, exit.

With --db every reduction is journaled to SQLite for trace and replay.
With --script the lines are read from a file instead of the terminal.

Examples:
  tcademo run
  tcademo run --db ./tcademo.db --ids sequential
  tcademo run --script ./session.txt --metrics-addr localhost:9090`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal reductions to this SQLite database")
	cmd.Flags().StringVar(&opts.IDs, "ids", "", "todo identifier mode (random|sequential); overrides config")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().StringVar(&opts.Script, "script", "", "read console lines from a file")
	cmd.Flags().StringVar(&opts.HistoryFile, "history-file", "", "readline history file")

	return cmd
}

func runConsole(opts *RunOptions, cmd *cobra.Command) error {
	env, err := buildEnvironment(opts.RootOptions, opts.IDs, effect.RealClock{}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(env.Logger)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	storeOpts := env.storeOptions(ctx, cmd.ErrOrStderr())
	if opts.Database != "" {
		j, _, rec, err := env.beginSession(ctx, opts.Database)
		if err != nil {
			return err
		}
		defer func() {
			if err := j.Close(); err != nil {
				env.Logger.Error("error closing journal", "error", err)
			}
		}()
		storeOpts = append(storeOpts, rec)
	}

	st := env.Feature.NewStore(storeOpts...)
	defer st.Close()

	hist, err := history.New[app.State](env.Config.History)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid history size", err)
	}
	detach := history.Attach(hist, st)
	defer detach()

	if opts.MetricsAddr != "" {
		_, shutdown, err := serveMetrics(opts.MetricsAddr, env.Logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	c := newConsole(st, hist, cmd.OutOrStdout())
	if opts.Script != "" {
		return runScript(ctx, c, opts.Script)
	}
	return runInteractive(ctx, c, opts.HistoryFile, cmd.ErrOrStderr())
}

// runScript feeds a file to the console line by line. A bad line is an
// error; blank lines and lines starting with # are skipped.
func runScript(ctx context.Context, c *console, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open script", err)
	}
	defer f.Close()
	return evalLines(ctx, c, f)
}

func evalLines(ctx context.Context, c *console, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		if err := c.Eval(line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return WrapExitError(ExitFailure, fmt.Sprintf("line %d", n), err)
		}
	}
	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitCommandError, "failed to read script", err)
	}
	return nil
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// wordCompleter completes the first word of a line from a fixed list.
// It implements readline.AutoCompleter.
type wordCompleter []string

var _ readline.AutoCompleter = wordCompleter(nil)

func newCompleter() wordCompleter {
	words := make(wordCompleter, 0, len(app.Verbs)+len(consoleCommands))
	words = append(words, app.Verbs...)
	return append(words, consoleCommands...)
}

// Do returns the missing suffix of every word starting with the text
// before the cursor, and the length of that text.
func (w wordCompleter) Do(line []rune, pos int) ([][]rune, int) {
	prefix := string(line[:pos])
	if strings.ContainsAny(prefix, " \t") {
		return nil, 0
	}
	var out [][]rune
	for _, word := range w {
		if strings.HasPrefix(word, prefix) {
			out = append(out, []rune(word[len(prefix):]+" "))
		}
	}
	return out, len([]rune(prefix))
}

func runInteractive(ctx context.Context, c *console, historyFile string, errw io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              "tcademo> ",
		HistoryFile:         historyFile,
		AutoComplete:        newCompleter(),
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start console", err)
	}
	defer rl.Close()
	rl.CaptureExitSignal()

	c.render()
	for ctx.Err() == nil {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return WrapExitError(ExitFailure, "console", err)
		}
		if err := c.Eval(line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(errw, "%v\n", err)
		}
	}
	return nil
}

// serveMetrics exposes the runtime collectors on addr/metrics and returns
// the address actually bound.
func serveMetrics(addr string, logger *slog.Logger) (bound string, shutdown func(), err error) {
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		return "", nil, WrapExitError(ExitCommandError, "failed to register metrics", err)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, WrapExitError(ExitCommandError, "failed to listen for metrics", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	bound = ln.Addr().String()
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", bound, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", bound)

	return bound, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

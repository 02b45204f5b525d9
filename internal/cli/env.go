package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/roach88/tcademo/internal/app"
	"github.com/roach88/tcademo/internal/config"
	"github.com/roach88/tcademo/internal/effect"
	"github.com/roach88/tcademo/internal/journal"
	"github.com/roach88/tcademo/internal/store"
	"github.com/roach88/tcademo/internal/testutil"
)

// environment is everything a command needs to build an application store.
type environment struct {
	Config  config.Config
	Source  string // CUE source; empty when running on defaults
	IDs     string // identifier mode actually used
	Feature app.Feature
	Logger  *slog.Logger
}

// loadConfig reads path, or returns the defaults when path is empty.
func loadConfig(path string) (config.Config, string, error) {
	if path == "" {
		return config.Default(), "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return config.Config{}, "", WrapExitError(ExitCommandError, "failed to read config", err)
	}
	cfg, err := config.Parse(data, path)
	if err != nil {
		return config.Config{}, "", WrapExitError(ExitCommandError, "invalid config", err)
	}
	return cfg, string(data), nil
}

// quietLevel is the log level for commands that run many stores.
const quietLevel = slog.LevelWarn

// newLogger builds the text logger on w. Verbose forces debug level.
func newLogger(w io.Writer, level slog.Level, verbose bool) *slog.Logger {
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// buildEnvironment loads configuration and wires the application.
// ids overrides the configured identifier mode when non-empty.
func buildEnvironment(opts *RootOptions, ids string, clock effect.Clock, logw io.Writer) (*environment, error) {
	cfg, source, err := loadConfig(opts.Config)
	if err != nil {
		return nil, err
	}

	if ids == "" {
		ids = cfg.IDs
	}
	deps := app.Dependencies{Clock: clock}
	switch ids {
	case config.IDsRandom:
	case config.IDsSequential:
		deps.IDs = testutil.NewIncrementingUUIDs()
	default:
		return nil, NewExitError(ExitCommandError,
			fmt.Sprintf("invalid ids mode %q: must be %s or %s", ids, config.IDsRandom, config.IDsSequential))
	}

	feature, err := app.New(cfg, deps)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid config", err)
	}

	return &environment{
		Config:  cfg,
		Source:  source,
		IDs:     ids,
		Feature: feature,
		Logger:  newLogger(logw, cfg.Log, opts.Verbose),
	}, nil
}

// storeOptions returns the options every command's store shares. Store
// errors are reported on errw.
func (e *environment) storeOptions(ctx context.Context, errw io.Writer) []store.Option[app.State, app.Action] {
	return []store.Option[app.State, app.Action]{
		store.WithContext[app.State, app.Action](ctx),
		store.WithLogger[app.State, app.Action](e.Logger),
		store.WithDescriber[app.State, app.Action](app.Format),
		store.WithErrorHandler[app.State, app.Action](reportStoreError(errw)),
	}
}

// reportStoreError prints the errors a store recovers from.
func reportStoreError(w io.Writer) func(error) {
	return func(err error) {
		if store.IsStepsExceededError(err) {
			fmt.Fprintf(w, "warning: %v (remaining follow-ups dropped)\n", err)
			return
		}
		fmt.Fprintf(w, "warning: %v\n", err)
	}
}

// beginSession opens the journal at path and starts a session for e.
// The returned option attaches the session's recorder to a store.
func (e *environment) beginSession(ctx context.Context, path string) (*journal.Journal, string, store.Option[app.State, app.Action], error) {
	j, err := journal.Open(path)
	if err != nil {
		return nil, "", nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}

	id := uuid.Must(uuid.NewV7()).String()
	session, err := journal.NewSession(id, e.IDs, e.Source, e.Feature.InitialState())
	if err == nil {
		err = j.BeginSession(ctx, session)
	}
	if err != nil {
		j.Close()
		return nil, "", nil, WrapExitError(ExitCommandError, "failed to begin session", err)
	}

	e.Logger.Info("journal session started", "db", path, "session", id, "ids", e.IDs)
	rec := journal.NewRecorder[app.State, app.Action](ctx, j, id, app.Format)
	return j, id, store.WithRecorder[app.State, app.Action](rec), nil
}

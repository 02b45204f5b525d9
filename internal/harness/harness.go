package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/tcademo/internal/app"
	"github.com/roach88/tcademo/internal/config"
	"github.com/roach88/tcademo/internal/ir"
	"github.com/roach88/tcademo/internal/store"
	"github.com/roach88/tcademo/internal/testutil"
)

// DefaultStepTimeout bounds how long an advance step waits for timer
// effects to register and their fires to be reduced.
const DefaultStepTimeout = 5 * time.Second

// Harness is the test execution engine.
// It runs scenarios with a manual clock and sequential todo ids.
type Harness struct {
	store  *app.Store
	clock  *testutil.ManualClock
	trace  *traceRecorder
	logger *slog.Logger
}

// Option configures Run.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	timeout time.Duration
}

// WithLogger sets the logger handed to the store. Logs are discarded by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithStepTimeout overrides DefaultStepTimeout.
func WithStepTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh store. A failing expect step or
// assertion marks the result as failed; an error is returned only when the
// scenario cannot be executed at all (bad configuration, a step timing out).
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout: DefaultStepTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := config.Default()
	if scenario.Config != "" {
		var err error
		cfg, err = config.Parse([]byte(scenario.Config), scenario.Name+".config")
		if err != nil {
			return nil, err
		}
	}

	clock := testutil.NewManualClock(time.Unix(0, 0))
	feature, err := app.New(cfg, app.Dependencies{Clock: clock, IDs: testutil.NewIncrementingUUIDs()})
	if err != nil {
		return nil, fmt.Errorf("configure app: %w", err)
	}

	h := &Harness{
		clock:  clock,
		trace:  &traceRecorder{},
		logger: o.logger,
	}
	h.store = feature.NewStore(
		store.WithContext[app.State, app.Action](ctx),
		store.WithLogger[app.State, app.Action](o.logger),
		store.WithRecorder[app.State, app.Action](h.trace),
	)
	defer h.store.Close()

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, o.timeout, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	result.Trace = h.trace.events()

	final, err := ir.FromGo(h.store.State())
	if err != nil {
		return nil, fmt.Errorf("lower final state: %w", err)
	}
	state, err := ir.MarshalCanonical(final)
	if err != nil {
		return nil, fmt.Errorf("marshal final state: %w", err)
	}
	result.State = state

	for _, msg := range EvaluateAssertions(result.Trace, final, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func (h *Harness) executeStep(ctx context.Context, timeout time.Duration, step Step, result *Result) error {
	switch {
	case step.Send != "":
		action, err := app.Parse(step.Send)
		if err != nil {
			return err
		}
		if !h.store.Send(action) {
			return fmt.Errorf("send %q: store closed", step.Send)
		}
		h.logger.Debug("step sent", "action", step.Send, "seq", h.store.Seq())

	case step.Advance != "":
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return err
		}
		return h.advance(ctx, timeout, d)

	case step.Expect != nil:
		state, err := ir.FromGo(h.store.State())
		if err != nil {
			return fmt.Errorf("lower state: %w", err)
		}
		if err := assertState("expect", state, step.Expect); err != nil {
			result.AddError(fmt.Sprintf("after seq %d: %v", h.store.Seq(), err))
		}
	}
	return nil
}

// advance moves the clock by d once every running effect has registered its
// ticker, then waits until every fire has been reduced.
func (h *Harness) advance(ctx context.Context, timeout time.Duration, d time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if active := h.store.Effects().Len(); active > 0 {
		if err := h.clock.BlockUntil(ctx, active); err != nil {
			return fmt.Errorf("advance %s: waiting for %d tickers: %w", d, active, err)
		}
	}

	before := h.store.Seq()
	fired := h.clock.Advance(d)
	if err := h.store.AwaitSeq(ctx, before+int64(fired)); err != nil {
		return fmt.Errorf("advance %s: %w", d, err)
	}
	h.logger.Debug("clock advanced", "by", d, "fired", fired, "seq", h.store.Seq())
	return nil
}

// traceRecorder collects trace events. Record runs under the store's
// writer lock; events may be read from any goroutine.
type traceRecorder struct {
	mu   sync.Mutex
	list []TraceEvent
}

func (r *traceRecorder) Record(e store.Entry[app.State, app.Action]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, TraceEvent{
		Seq:    e.Seq,
		Origin: string(e.Origin),
		Action: app.Format(e.Action),
	})
	return nil
}

func (r *traceRecorder) events() []TraceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TraceEvent, len(r.list))
	copy(out, r.list)
	return out
}

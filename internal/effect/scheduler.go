package effect

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/roach88/tcademo/internal/metrics"
)

// Task is one running producer.
type Task struct {
	id     ID
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// ID returns the ID the task was started under (zero for anonymous tasks).
func (t *Task) ID() ID {
	return t.id
}

// Done is closed when the producer has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the producer's error once Done is closed.
func (t *Task) Err() error {
	<-t.done
	return t.err
}

// Cancel signals the producer to stop. It does not wait.
func (t *Task) Cancel() {
	t.cancel()
}

// Cancelled reports whether the task has been asked to stop.
func (t *Task) Cancelled() bool {
	return t.ctx.Err() != nil
}

// Scheduler runs producers and keeps a registry of cancellable tasks.
//
// At most one task is registered per ID. Start under an ID that already has
// a task cancels the old task and registers the new one ("last start wins").
// The registry is private to the scheduler and disjoint from store state.
//
// Thread-safety: all methods are safe for concurrent use.
type Scheduler[A any] struct {
	ctx    context.Context
	cancel context.CancelFunc
	sink   func(A)
	logger *slog.Logger

	tasks *xsync.MapOf[ID, *Task]
	wg    sync.WaitGroup

	// mu orders admission against Close: a task is registered and counted
	// in wg only while closed is false.
	mu     sync.Mutex
	closed bool
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*schedulerConfig)

type schedulerConfig struct {
	ctx    context.Context
	logger *slog.Logger
}

// WithParent derives every task context from ctx.
func WithParent(ctx context.Context) SchedulerOption {
	return func(c *schedulerConfig) {
		c.ctx = ctx
	}
}

// WithSchedulerLogger sets the logger used for task failures.
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(c *schedulerConfig) {
		c.logger = l
	}
}

// NewScheduler returns a scheduler that delivers emitted actions to sink.
// sink may block; it is called from task goroutines.
func NewScheduler[A any](sink func(A), opts ...SchedulerOption) *Scheduler[A] {
	cfg := schedulerConfig{ctx: context.Background(), logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	ctx, cancel := context.WithCancel(cfg.ctx)
	return &Scheduler[A]{
		ctx:    ctx,
		cancel: cancel,
		sink:   sink,
		logger: cfg.logger,
		tasks:  xsync.NewMapOf[ID, *Task](),
	}
}

// Start runs p under id, cancelling any task already registered under id.
// A zero id runs p anonymously, like Go.
// After Close, Start returns an already finished task.
func (s *Scheduler[A]) Start(id ID, p Producer[A]) *Task {
	if id.IsZero() {
		return s.Go(p)
	}
	task := s.newTask(id)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return finished(task)
	}
	prev, loaded := s.tasks.LoadAndStore(id, task)
	s.wg.Add(1)
	s.mu.Unlock()
	if loaded {
		prev.cancel()
		metrics.Tasks.WithLabelValues("superseded").Inc()
		s.logger.Debug("effect superseded", "id", id.String())
	}
	s.launch(task, p)
	return task
}

// Go runs p without registering it. Anonymous tasks stop on Close.
func (s *Scheduler[A]) Go(p Producer[A]) *Task {
	task := s.newTask(ID{})
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return finished(task)
	}
	s.wg.Add(1)
	s.mu.Unlock()
	s.launch(task, p)
	return task
}

// Cancel cancels the task registered under id. Cancelling an id with no
// task is a no-op.
func (s *Scheduler[A]) Cancel(id ID) {
	if task, ok := s.tasks.LoadAndDelete(id); ok {
		task.cancel()
		metrics.Tasks.WithLabelValues("cancelled").Inc()
		s.logger.Debug("effect cancelled", "id", id.String())
	}
}

// Active reports whether a task is registered under id.
func (s *Scheduler[A]) Active(id ID) bool {
	task, ok := s.tasks.Load(id)
	return ok && !task.Cancelled()
}

// Len returns the number of registered tasks.
func (s *Scheduler[A]) Len() int {
	return s.tasks.Size()
}

// IDs returns the IDs of registered tasks in no particular order.
func (s *Scheduler[A]) IDs() []ID {
	ids := make([]ID, 0, s.tasks.Size())
	s.tasks.Range(func(id ID, _ *Task) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}

// Close cancels every task and waits for all producers to return.
// Later calls to Start and Go return finished tasks.
func (s *Scheduler[A]) Close() {
	s.mu.Lock()
	already := s.closed
	s.closed = true
	s.mu.Unlock()
	if !already {
		s.cancel()
		s.tasks.Clear()
	}
	s.wg.Wait()
}

// Wait blocks until every task started so far has returned.
func (s *Scheduler[A]) Wait() {
	s.wg.Wait()
}

func (s *Scheduler[A]) newTask(id ID) *Task {
	ctx, cancel := context.WithCancel(s.ctx)
	return &Task{id: id, ctx: ctx, cancel: cancel, done: make(chan struct{})}
}

// launch runs p for task. The caller has already counted task in wg.
func (s *Scheduler[A]) launch(task *Task, p Producer[A]) {
	metrics.Tasks.WithLabelValues("started").Inc()
	metrics.ActiveTasks.Inc()

	send := func(a A) {
		// Emissions after cancellation are dropped.
		if task.ctx.Err() != nil {
			return
		}
		s.sink(a)
	}

	go func() {
		defer s.wg.Done()
		defer metrics.ActiveTasks.Dec()
		defer close(task.done)
		defer task.cancel()
		defer s.unregister(task)

		err := p(task.ctx, send)
		if err != nil && !errors.Is(err, context.Canceled) {
			task.err = err
			metrics.Tasks.WithLabelValues("failed").Inc()
			s.logger.Error("effect failed", "id", task.id.String(), "error", err)
			return
		}
		metrics.Tasks.WithLabelValues("finished").Inc()
	}()
}

// unregister removes task from the registry if it is still the current task
// for its id. A task that was superseded must not remove its replacement.
func (s *Scheduler[A]) unregister(task *Task) {
	if task.id.IsZero() {
		return
	}
	s.tasks.Compute(task.id, func(current *Task, loaded bool) (*Task, bool) {
		return current, !loaded || current == task
	})
}

func finished(task *Task) *Task {
	task.cancel()
	close(task.done)
	return task
}

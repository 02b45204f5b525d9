package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roach88/tcademo/internal/effect"
	"github.com/roach88/tcademo/internal/metrics"
	"github.com/roach88/tcademo/internal/reducer"
)

// Snapshot is the state after one reduction. Seq increases with every
// reduction; a subscriber never sees a Seq lower than one it has already
// seen.
type Snapshot[S any] struct {
	Seq   int64
	State S
}

// Entry describes one reduction for a Recorder.
type Entry[S, A any] struct {
	Seq    int64
	Origin Origin
	Action A
	State  S
}

// Recorder receives every reduction in seq order, under the writer lock,
// before the snapshot is published.
// A Recorder error is logged and does not stop the store.
type Recorder[S, A any] interface {
	Record(entry Entry[S, A]) error
}

// Store is the single owner of an application's state.
//
// Thread-safety model:
//   - Send: safe from any goroutine, including effect goroutines
//   - State/Snapshot/Seq: safe from any goroutine, lock-free
//   - Subscribe: safe from any goroutine, including inside a subscriber
//
// Subscribers run under the writer lock. A subscriber must not call Send on
// the same goroutine; it would deadlock.
type Store[S, A any] struct {
	reducer  reducer.Reducer[S, A]
	clock    *Clock
	queue    *actionQueue[A]
	sched    *effect.Scheduler[A]
	snapshot atomic.Pointer[Snapshot[S]]
	closed   atomic.Bool

	// mu is the writer lock. fx serializes hand-off of effects to the
	// scheduler; it is acquired before mu is released.
	mu sync.Mutex
	fx sync.Mutex

	subMu  sync.Mutex
	subs   []*subscription[S]
	nextID int

	waitMu  sync.Mutex
	changed chan struct{}

	ctx      context.Context
	logger   *slog.Logger
	recorder Recorder[S, A]
	maxSteps int
	describe func(A) string
	onError  func(error)
}

type subscription[S any] struct {
	id int
	fn func(Snapshot[S])
}

// Option configures a Store.
type Option[S, A any] func(*Store[S, A])

// WithLogger sets the store's logger. Default: slog.Default().
func WithLogger[S, A any](l *slog.Logger) Option[S, A] {
	return func(s *Store[S, A]) {
		s.logger = l
	}
}

// WithMaxSteps sets the follow-up quota per queued action.
//
// Default: 1000 steps (DefaultMaxSteps)
func WithMaxSteps[S, A any](n int) Option[S, A] {
	return func(s *Store[S, A]) {
		s.maxSteps = n
	}
}

// WithRecorder records every reduction.
func WithRecorder[S, A any](r Recorder[S, A]) Option[S, A] {
	return func(s *Store[S, A]) {
		s.recorder = r
	}
}

// WithContext derives every effect's context from ctx. Cancelling ctx stops
// running effects; the store itself keeps accepting actions until Close.
func WithContext[S, A any](ctx context.Context) Option[S, A] {
	return func(s *Store[S, A]) {
		s.ctx = ctx
	}
}

// WithDescriber sets how actions are rendered in logs and errors.
// Default: fmt.Sprint for Stringers, the dynamic type otherwise.
func WithDescriber[S, A any](fn func(A) string) Option[S, A] {
	return func(s *Store[S, A]) {
		s.describe = fn
	}
}

// WithErrorHandler receives the errors the store logs and recovers from: a
// *StepsExceededError when follow-ups are dropped, and Recorder failures.
// fn runs under the writer lock and must not call Send.
func WithErrorHandler[S, A any](fn func(error)) Option[S, A] {
	return func(s *Store[S, A]) {
		s.onError = fn
	}
}

// New creates a Store holding initial and reducing with r.
// The initial snapshot has Seq 0.
func New[S, A any](initial S, r reducer.Reducer[S, A], opts ...Option[S, A]) *Store[S, A] {
	s := &Store[S, A]{
		reducer:  r,
		clock:    NewClock(),
		queue:    newActionQueue[A](),
		changed:  make(chan struct{}),
		ctx:      context.Background(),
		logger:   slog.Default(),
		maxSteps: DefaultMaxSteps,
		describe: defaultDescribe[A],
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(&Snapshot[S]{State: initial})
	s.sched = effect.NewScheduler(s.sendFromEffect,
		effect.WithParent(s.ctx),
		effect.WithSchedulerLogger(s.logger),
	)
	return s
}

// Send reduces action and every synchronous follow-up it produces, then hands
// requested effects to the scheduler. It returns false if the store is
// closed.
//
// Send returns after the action has been reduced and its effects started.
// Actions queued concurrently by other goroutines may be reduced by this call
// too, in the order they were queued.
func (s *Store[S, A]) Send(action A) bool {
	return s.dispatch(action, OriginExternal)
}

func (s *Store[S, A]) sendFromEffect(action A) {
	s.dispatch(action, OriginEffect)
}

func (s *Store[S, A]) dispatch(action A, origin Origin) bool {
	if !s.queue.Enqueue(pending[A]{action: action, origin: origin}) {
		metrics.DroppedActions.WithLabelValues("closed").Inc()
		s.logger.Debug("action dropped: store closed", "action", s.describe(action))
		return false
	}

	s.mu.Lock()
	ops := s.drainLocked()
	s.fx.Lock()
	s.mu.Unlock()
	defer s.fx.Unlock()

	s.execute(ops)
	return true
}

// drainLocked reduces every queued action. Must hold mu.
func (s *Store[S, A]) drainLocked() []effect.Op[A] {
	var ops []effect.Op[A]
	for {
		p, ok := s.queue.TryDequeue()
		if !ok {
			return ops
		}
		ops = s.processLocked(p, ops)
	}
}

// processLocked reduces one queued action and its follow-ups. Follow-ups are
// kept on a local FIFO so they run before anything else in the queue.
func (s *Store[S, A]) processLocked(root pending[A], ops []effect.Op[A]) []effect.Op[A] {
	q := newQuota(s.maxSteps)
	local := []pending[A]{root}
	for len(local) > 0 {
		p := local[0]
		local = local[1:]

		if p.origin == OriginFollowUp {
			if err := q.Check(s.describe(root.action)); err != nil {
				metrics.DroppedActions.WithLabelValues("quota").Add(float64(len(local) + 1))
				s.logger.Error("max steps quota exceeded",
					"action", s.describe(root.action),
					"dropped", len(local)+1,
					"error", err,
				)
				s.report(err)
				return ops
			}
		}

		e := s.reduceLocked(p)
		for _, op := range e.Ops() {
			if op.Kind == effect.KindSend {
				for _, a := range op.Actions {
					local = append(local, pending[A]{action: a, origin: OriginFollowUp})
				}
				continue
			}
			ops = append(ops, op)
		}
	}
	return ops
}

func (s *Store[S, A]) reduceLocked(p pending[A]) effect.Effect[A] {
	prev := s.snapshot.Load()

	start := time.Now()
	next, e := s.reducer.Reduce(prev.State, p.action)
	metrics.ReduceDuration.WithLabelValues(string(p.origin)).Observe(time.Since(start).Seconds())
	metrics.Actions.WithLabelValues(string(p.origin)).Inc()

	snap := &Snapshot[S]{Seq: s.clock.Next(), State: next}

	s.logger.Debug("action reduced",
		"seq", snap.Seq,
		"origin", string(p.origin),
		"action", s.describe(p.action),
	)

	// Record before publishing: a reader that observes seq N can rely on
	// the recorder having seen entry N.
	if s.recorder != nil {
		entry := Entry[S, A]{Seq: snap.Seq, Origin: p.origin, Action: p.action, State: next}
		if err := s.recorder.Record(entry); err != nil {
			s.logger.Error("record failed", "seq", snap.Seq, "error", err)
			s.report(fmt.Errorf("record seq %d: %w", snap.Seq, err))
		}
	}

	s.snapshot.Store(snap)
	s.notify(*snap)
	return e
}

func (s *Store[S, A]) report(err error) {
	if s.onError != nil {
		s.onError(err)
	}
}

// execute hands run and cancel operations to the scheduler. Must hold fx.
func (s *Store[S, A]) execute(ops []effect.Op[A]) {
	for _, op := range ops {
		switch op.Kind {
		case effect.KindRun:
			s.sched.Start(op.ID, op.Producer)
		case effect.KindCancel:
			s.sched.Cancel(op.ID)
		}
	}
}

func (s *Store[S, A]) notify(snap Snapshot[S]) {
	s.subMu.Lock()
	subs := append([]*subscription[S](nil), s.subs...)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}

	s.waitMu.Lock()
	close(s.changed)
	s.changed = make(chan struct{})
	s.waitMu.Unlock()
}

// State returns the current state.
func (s *Store[S, A]) State() S {
	return s.snapshot.Load().State
}

// Snapshot returns the current state with its seq.
func (s *Store[S, A]) Snapshot() Snapshot[S] {
	return *s.snapshot.Load()
}

// Seq returns the seq of the current snapshot.
func (s *Store[S, A]) Seq() int64 {
	return s.snapshot.Load().Seq
}

// Subscribe calls fn with every new snapshot, in seq order, until the
// returned cancel function is called. fn is not called with the current
// snapshot.
func (s *Store[S, A]) Subscribe(fn func(Snapshot[S])) (cancel func()) {
	s.subMu.Lock()
	s.nextID++
	sub := &subscription[S]{id: s.nextID, fn: fn}
	s.subs = append(s.subs, sub)
	s.subMu.Unlock()
	metrics.Subscribers.Inc()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, existing := range s.subs {
				if existing.id == sub.id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					break
				}
			}
			metrics.Subscribers.Dec()
		})
	}
}

// Observe calls fn with every new state. It adapts Subscribe to Source.
func (s *Store[S, A]) Observe(fn func(S)) (cancel func()) {
	return s.Subscribe(func(snap Snapshot[S]) { fn(snap.State) })
}

// AwaitSeq blocks until the store has reduced at least seq actions.
func (s *Store[S, A]) AwaitSeq(ctx context.Context, seq int64) error {
	for {
		s.waitMu.Lock()
		changed := s.changed
		s.waitMu.Unlock()

		if s.Seq() >= seq {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("await seq %d (at %d): %w", seq, s.Seq(), ctx.Err())
		case <-changed:
		}
	}
}

// Effects returns the store's effect scheduler.
func (s *Store[S, A]) Effects() *effect.Scheduler[A] {
	return s.sched
}

// Close stops accepting actions, cancels every running effect, and waits for
// effect goroutines to return. State remains readable.
func (s *Store[S, A]) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.queue.Close()
	s.sched.Close()
	s.logger.Debug("store closed", "seq", s.Seq())
}

func defaultDescribe[A any](a A) string {
	if str, ok := any(a).(fmt.Stringer); ok {
		return str.String()
	}
	return fmt.Sprintf("%T", a)
}

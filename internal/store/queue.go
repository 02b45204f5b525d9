package store

import "sync"

// Origin records where an action entered the store.
type Origin string

const (
	// OriginExternal is an action passed to Send by a caller.
	OriginExternal Origin = "external"
	// OriginEffect is an action emitted by a running effect.
	OriginEffect Origin = "effect"
	// OriginFollowUp is an action produced synchronously by effect.Send
	// while reducing another action.
	OriginFollowUp Origin = "follow-up"
)

// Valid reports whether o is one of the known origins.
func (o Origin) Valid() bool {
	switch o {
	case OriginExternal, OriginEffect, OriginFollowUp:
		return true
	}
	return false
}

type pending[A any] struct {
	action A
	origin Origin
}

// actionQueue is a thread-safe FIFO queue of actions waiting to be reduced.
//
// The queue is unbounded so that effect goroutines never block on a full
// queue while the writer is busy.
type actionQueue[A any] struct {
	mu     sync.Mutex
	items  []pending[A]
	closed bool
}

func newActionQueue[A any]() *actionQueue[A] {
	return &actionQueue[A]{items: make([]pending[A], 0, 16)}
}

// Enqueue adds an action to the back of the queue.
// Returns false if the queue is closed.
func (q *actionQueue[A]) Enqueue(p pending[A]) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, p)
	return true
}

// TryDequeue removes and returns the front action without blocking.
func (q *actionQueue[A]) TryDequeue() (pending[A], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return pending[A]{}, false
	}
	p := q.items[0]

	// Zero the slot so the backing array does not retain the action.
	q.items[0] = pending[A]{}
	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return p, true
}

// Len returns the current queue length.
func (q *actionQueue[A]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close rejects further enqueues. Items already queued can still be dequeued.
func (q *actionQueue[A]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

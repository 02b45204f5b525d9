package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/roach88/tcademo/internal/effect"
)

// ManualClock is an effect.Clock whose time only moves on Advance.
//
// Fires are delivered synchronously: Advance hands each fire to the ticker's
// consumer and does not deliver the next one until the consumer has received
// it. Consumers that loop on the ticker (effect.Timer) therefore finish
// processing fire n before fire n+1 is delivered.
//
// Thread-safety: all methods are safe for concurrent use.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
	changed chan struct{}
}

var _ effect.Clock = (*ManualClock)(nil)

// NewManualClock returns a clock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start, changed: make(chan struct{})}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Ticker implements effect.Clock. The ticker stops delivering once ctx is
// done or Stop is called.
func (c *ManualClock) Ticker(ctx context.Context, d time.Duration) effect.Ticker {
	if d <= 0 {
		panic("testutil: non-positive ticker period")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &manualTicker{
		clock:   c,
		ctx:     ctx,
		period:  d,
		next:    c.now.Add(d),
		c:       make(chan time.Time),
		stopped: make(chan struct{}),
	}
	c.tickers = append(c.tickers, t)
	c.notifyLocked()
	return t
}

// Tickers returns the number of tickers that can still fire.
func (c *ManualClock) Tickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	for _, t := range c.tickers {
		if t.live() {
			n++
		}
	}
	return n
}

// BlockUntil waits until at least n tickers can fire.
func (c *ManualClock) BlockUntil(ctx context.Context, n int) error {
	for {
		c.mu.Lock()
		var live int
		for _, t := range c.tickers {
			if t.live() {
				live++
			}
		}
		changed := c.changed
		c.mu.Unlock()

		if live >= n {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

// Advance moves the clock forward by d, delivering every fire that falls
// inside the window in time order. Fires at equal times are delivered in
// ticker creation order. It returns the number of fires handed to consumers.
func (c *ManualClock) Advance(d time.Duration) int {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	var fired int
	for {
		c.mu.Lock()
		t := c.earliestLocked(target)
		if t == nil {
			c.now = target
			c.mu.Unlock()
			return fired
		}
		at := t.next
		c.now = at
		t.next = at.Add(t.period)
		c.mu.Unlock()

		if t.deliver(at) {
			fired++
		}
	}
}

func (c *ManualClock) earliestLocked(target time.Time) *manualTicker {
	var best *manualTicker
	live := c.tickers[:0]
	for _, t := range c.tickers {
		if !t.live() {
			continue
		}
		live = append(live, t)
		if t.next.After(target) {
			continue
		}
		if best == nil || t.next.Before(best.next) {
			best = t
		}
	}
	clear(c.tickers[len(live):])
	c.tickers = live
	return best
}

func (c *ManualClock) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

type manualTicker struct {
	clock    *ManualClock
	ctx      context.Context
	period   time.Duration
	next     time.Time
	c        chan time.Time
	stopped  chan struct{}
	stopOnce sync.Once
}

func (t *manualTicker) C() <-chan time.Time {
	return t.c
}

func (t *manualTicker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopped)
		t.clock.mu.Lock()
		t.clock.notifyLocked()
		t.clock.mu.Unlock()
	})
}

func (t *manualTicker) live() bool {
	if t.ctx.Err() != nil {
		return false
	}
	select {
	case <-t.stopped:
		return false
	default:
		return true
	}
}

// deliver blocks until the consumer receives at or the ticker dies.
func (t *manualTicker) deliver(at time.Time) bool {
	if !t.live() {
		return false
	}
	select {
	case t.c <- at:
		return true
	case <-t.ctx.Done():
		return false
	case <-t.stopped:
		return false
	}
}

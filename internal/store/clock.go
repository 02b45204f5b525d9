package store

import "sync/atomic"

// Clock is the store's monotonic logical clock.
//
// Every reduction is stamped with a strictly increasing seq from this clock.
// Seq numbers order snapshots for subscribers and journal entries, and a
// replay of the same actions yields the same numbering.
//
// Thread-safety: Clock is safe for concurrent use. The store only calls Next
// while holding its writer lock.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last sequence number handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

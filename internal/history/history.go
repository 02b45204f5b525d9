// Package history keeps the most recent store snapshots in memory.
package history

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/tcademo/internal/store"
)

// Buffer holds the last N snapshots keyed by seq. Older snapshots are
// evicted as new ones arrive.
//
// Thread-safety: Buffer is safe for concurrent use.
type Buffer[S any] struct {
	cache *lru.Cache[int64, store.Snapshot[S]]
}

// New returns a buffer holding up to size snapshots.
func New[S any](size int) (*Buffer[S], error) {
	cache, err := lru.New[int64, store.Snapshot[S]](size)
	if err != nil {
		return nil, fmt.Errorf("history buffer: %w", err)
	}
	return &Buffer[S]{cache: cache}, nil
}

// Attach records every snapshot s publishes, starting with the current one.
// It returns the subscription's cancel function.
func Attach[S, A any](b *Buffer[S], s *store.Store[S, A]) (cancel func()) {
	cancel = s.Subscribe(b.Record)
	b.Record(s.Snapshot())
	return cancel
}

// Record adds snap. Recording a seq twice keeps the later snapshot.
func (b *Buffer[S]) Record(snap store.Snapshot[S]) {
	b.cache.Add(snap.Seq, snap)
}

// Get returns the snapshot with seq, if it is still held.
func (b *Buffer[S]) Get(seq int64) (store.Snapshot[S], bool) {
	return b.cache.Peek(seq)
}

// Len returns the number of snapshots held.
func (b *Buffer[S]) Len() int {
	return b.cache.Len()
}

// Last returns up to n of the newest snapshots, oldest first.
func (b *Buffer[S]) Last(n int) []store.Snapshot[S] {
	keys := b.cache.Keys()
	if n < len(keys) {
		keys = keys[len(keys)-n:]
	}
	out := make([]store.Snapshot[S], 0, len(keys))
	for _, k := range keys {
		if snap, ok := b.cache.Peek(k); ok {
			out = append(out, snap)
		}
	}
	return out
}

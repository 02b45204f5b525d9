package testutil

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
)

// IncrementingUUIDs generates 00000000-0000-0000-0000-000000000001,
// ...0002, and so on. The same sequence of calls always produces the same
// identifiers, which keeps golden traces byte-stable.
//
// Thread-safety: IncrementingUUIDs is safe for concurrent use.
type IncrementingUUIDs struct {
	mu   sync.Mutex
	next uint64
}

// NewIncrementingUUIDs returns a generator whose first identifier ends in 1.
func NewIncrementingUUIDs() *IncrementingUUIDs {
	return &IncrementingUUIDs{}
}

// New returns the next identifier.
func (g *IncrementingUUIDs) New() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return SequentialUUID(g.next)
}

// SequentialUUID returns the identifier an IncrementingUUIDs hands out on
// its n-th call.
func SequentialUUID(n uint64) uuid.UUID {
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[8:], n)
	return id
}

// Package identified provides an ordered collection of elements keyed by a
// stable identifier.
//
// Array is copy-on-write: every mutating method returns a new Array and never
// writes into the backing slice of the receiver, so an Array held by an old
// snapshot is never changed by a later reduction.
package identified

import (
	"encoding/json"
	"fmt"
	"iter"
	"slices"
)

// Identifiable is implemented by elements that carry their own identifier.
type Identifiable[ID comparable] interface {
	Key() ID
}

// Array is an ordered sequence of elements with unique identifiers.
// Insertion order is iteration order. The zero value is an empty Array.
type Array[ID comparable, E Identifiable[ID]] struct {
	elems []E
}

// DuplicateIDError is returned when an element's identifier is already present.
type DuplicateIDError[ID comparable] struct {
	ID ID
}

func (e *DuplicateIDError[ID]) Error() string {
	return fmt.Sprintf("identified: duplicate id %v", e.ID)
}

// FromSlice builds an Array, rejecting duplicate identifiers.
func FromSlice[ID comparable, E Identifiable[ID]](elems []E) (Array[ID, E], error) {
	seen := make(map[ID]struct{}, len(elems))
	for _, e := range elems {
		if _, dup := seen[e.Key()]; dup {
			return Array[ID, E]{}, &DuplicateIDError[ID]{ID: e.Key()}
		}
		seen[e.Key()] = struct{}{}
	}
	return Array[ID, E]{elems: normalize(slices.Clone(elems))}, nil
}

// Len returns the number of elements.
func (a Array[ID, E]) Len() int {
	return len(a.elems)
}

// IsEmpty reports whether the Array has no elements.
func (a Array[ID, E]) IsEmpty() bool {
	return len(a.elems) == 0
}

// Index returns the position of id, or -1.
func (a Array[ID, E]) Index(id ID) int {
	return slices.IndexFunc(a.elems, func(e E) bool { return e.Key() == id })
}

// Contains reports whether id is present.
func (a Array[ID, E]) Contains(id ID) bool {
	return a.Index(id) >= 0
}

// Get returns the element with the given id.
func (a Array[ID, E]) Get(id ID) (E, bool) {
	if i := a.Index(id); i >= 0 {
		return a.elems[i], true
	}
	var zero E
	return zero, false
}

// At returns the element at position i. It panics when i is out of range.
func (a Array[ID, E]) At(i int) E {
	return a.elems[i]
}

// IDs returns the identifiers in order.
func (a Array[ID, E]) IDs() []ID {
	ids := make([]ID, len(a.elems))
	for i, e := range a.elems {
		ids[i] = e.Key()
	}
	return ids
}

// Elements returns a copy of the elements in order.
func (a Array[ID, E]) Elements() []E {
	return slices.Clone(a.elems)
}

// All iterates elements in order.
func (a Array[ID, E]) All() iter.Seq2[int, E] {
	return func(yield func(int, E) bool) {
		for i, e := range a.elems {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Append returns a new Array with e at the end.
// It fails when e's identifier is already present.
func (a Array[ID, E]) Append(e E) (Array[ID, E], error) {
	if a.Contains(e.Key()) {
		return a, &DuplicateIDError[ID]{ID: e.Key()}
	}
	next := make([]E, len(a.elems), len(a.elems)+1)
	copy(next, a.elems)
	return Array[ID, E]{elems: append(next, e)}, nil
}

// Remove returns a new Array without id. Order of the remaining elements is
// preserved. The second result is false when id was not present.
func (a Array[ID, E]) Remove(id ID) (Array[ID, E], bool) {
	i := a.Index(id)
	if i < 0 {
		return a, false
	}
	next := make([]E, 0, len(a.elems)-1)
	next = append(next, a.elems[:i]...)
	next = append(next, a.elems[i+1:]...)
	return Array[ID, E]{elems: normalize(next)}, true
}

// RemoveAt returns a new Array without the elements at the given offsets.
// Offsets out of range are ignored.
func (a Array[ID, E]) RemoveAt(offsets ...int) Array[ID, E] {
	drop := make(map[int]struct{}, len(offsets))
	for _, o := range offsets {
		if o >= 0 && o < len(a.elems) {
			drop[o] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return a
	}
	next := make([]E, 0, len(a.elems)-len(drop))
	for i, e := range a.elems {
		if _, ok := drop[i]; !ok {
			next = append(next, e)
		}
	}
	return Array[ID, E]{elems: normalize(next)}
}

// Update replaces the element with the given id by fn(element).
// fn must not change the identifier. The second result is false when id was
// not present, in which case the receiver is returned unchanged.
func (a Array[ID, E]) Update(id ID, fn func(E) E) (Array[ID, E], bool) {
	i := a.Index(id)
	if i < 0 {
		return a, false
	}
	updated := fn(a.elems[i])
	if updated.Key() != id {
		panic(fmt.Sprintf("identified: update changed id %v to %v", id, updated.Key()))
	}
	next := slices.Clone(a.elems)
	next[i] = updated
	return Array[ID, E]{elems: next}, true
}

// MarshalJSON encodes the Array as a JSON list. An empty Array is [].
func (a Array[ID, E]) MarshalJSON() ([]byte, error) {
	if a.elems == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.elems)
}

// UnmarshalJSON decodes a JSON list, rejecting duplicate identifiers.
func (a *Array[ID, E]) UnmarshalJSON(data []byte) error {
	var elems []E
	if err := json.Unmarshal(data, &elems); err != nil {
		return err
	}
	decoded, err := FromSlice[ID, E](elems)
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

// normalize keeps empty Arrays at a nil backing slice so that structural
// equality does not depend on how the Array became empty.
func normalize[E any](elems []E) []E {
	if len(elems) == 0 {
		return nil
	}
	return elems
}

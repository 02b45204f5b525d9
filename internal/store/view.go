package store

import (
	"reflect"
	"sync"
)

// Source is anything a View can be scoped from: a Store or another View.
type Source[S, A any] interface {
	State() S
	Send(action A) bool
	Observe(fn func(S)) (cancel func())
}

var (
	_ Source[int, int] = (*Store[int, int])(nil)
	_ Source[int, int] = (*View[int, int])(nil)
)

// View is a read/write window onto one part of a store.
//
// State projects the parent's current state. Send wraps child actions into
// parent actions. Observe only fires when the projected state changed, so a
// presentation layer bound to a View re-renders only for its own slice.
type View[C, CA any] struct {
	state   func() C
	send    func(CA) bool
	observe func(func(C)) func()
}

// Scope returns a View of src focused by get, sending through embed.
func Scope[S, A, C, CA any](src Source[S, A], get func(S) C, embed func(CA) A) *View[C, CA] {
	return &View[C, CA]{
		state: func() C { return get(src.State()) },
		send:  func(a CA) bool { return src.Send(embed(a)) },
		observe: func(fn func(C)) func() {
			var mu sync.Mutex
			last := get(src.State())
			return src.Observe(func(s S) {
				next := get(s)
				mu.Lock()
				same := reflect.DeepEqual(last, next)
				last = next
				mu.Unlock()
				if !same {
					fn(next)
				}
			})
		},
	}
}

// State returns the projected state.
func (v *View[C, CA]) State() C {
	return v.state()
}

// Send sends a child action through the parent.
func (v *View[C, CA]) Send(action CA) bool {
	return v.send(action)
}

// Observe calls fn whenever the projected state changes.
func (v *View[C, CA]) Observe(fn func(C)) (cancel func()) {
	return v.observe(fn)
}

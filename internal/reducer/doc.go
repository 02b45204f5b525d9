// Package reducer composes pure state transition functions.
//
// A Reducer takes the current state value and one action and returns the
// next state value plus an effect.Effect describing follow-up work. Reducers
// never block, never read the clock, and never mutate memory reachable from
// their input state; slices inside state are copy-on-write
// (identified.Array).
//
// Composition:
//
//   - Combine runs reducers in order, threading state and merging effects.
//   - Scope mounts a child reducer on one fixed slot of the parent state,
//     routing only actions wrapped for that slot.
//   - ForEach mounts a child reducer on every element of an identified
//     collection, routing (id, action) pairs to the element with that id.
//   - OnDelegate lets a parent react to one concrete child action type (the
//     child's delegate) without seeing any other child action.
//
// Child reducers are listed before the parent's own reducer in Combine, so
// the parent always observes state after the child's mutation.
package reducer

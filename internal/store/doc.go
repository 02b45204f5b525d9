// Package store owns the application state and serializes every change to it.
//
// ARCHITECTURE:
//
// Single writer:
// Send enqueues an action on a FIFO queue and drains the queue while holding
// the writer lock. Whoever holds the lock reduces every queued action in
// enqueue order, so concurrent Send calls are applied as if sequential and a
// reduction is never interleaved with another.
//
// Reduce cycle, per action:
//  1. Stamp the next seq from the logical Clock.
//  2. Call the root reducer with the current state.
//  3. Replace the snapshot atomically.
//  4. Record the entry (optional Recorder) and notify subscribers.
//  5. Queue synchronous follow-up actions (effect.Send) ahead of anything
//     else; they are reduced before the next queued action.
//  6. Collect Run/Cancel operations for the scheduler.
//
// After the queue is empty, the writer lock is released and collected
// Run/Cancel operations are handed to the effect.Scheduler in production
// order. An effect can therefore never be observed before the state that
// requested it.
//
// Effects talk back only through Send. Actions they emit are queued behind
// whatever is already pending.
//
// Seq values are logical, never wall-clock, so a replay of the same external
// actions yields the same seq numbering.
package store

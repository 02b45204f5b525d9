// Package effect describes asynchronous work requested by reducers and runs it.
//
// A reducer never performs side effects. It returns an Effect value that
// lists what should happen next: actions to feed back immediately (Send),
// producers to run concurrently (Run), and identifiers whose running work
// should stop (Cancel). The store interprets the Effect after the state
// replacement that produced it.
//
// Producers run on a Scheduler. Work started under an ID is registered so it
// can be cancelled later; starting new work under an ID that is already
// running cancels and replaces the old task. Producers talk back to the store
// only through the send function they are handed, which drops emissions once
// the task is cancelled.
package effect

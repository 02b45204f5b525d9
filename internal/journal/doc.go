// Package journal records a store's reductions in SQLite.
//
// The journal is an append-only debug trace. It is never used to restore
// state: a session can be listed, read back and replayed against a fresh
// store to check that the recorded snapshots are reproducible.
//
// # Tables
//
//   - sessions: one row per store lifetime, with the CUE source of the
//     configuration it ran with and the identifier mode
//   - entries: one row per reduction, keyed by a content-addressed id
//
// # Ordering
//
// All ordering uses the store's seq (a logical clock), never timestamps.
// Queries order by seq ASC, id COLLATE BINARY ASC so results are identical
// across reads.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait on lock contention
//   - foreign_keys=ON: entries reference their session
package journal

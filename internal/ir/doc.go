// Package ir provides the canonical representation of state snapshots and
// dispatched actions.
//
// Snapshots are plain Go values. Before they are fingerprinted, journaled or
// compared against golden files they are lowered into a small sealed value
// model (String, Int, Bool, Null, Array, Object) and serialized as canonical
// JSON. The same snapshot always produces the same bytes:
//   - object keys sorted by UTF-16 code units (RFC 8785)
//   - strings NFC normalized, no HTML escaping
//   - floats rejected; durations and counters are integers
//
// ir imports nothing internal.
package ir

// Package repositories implements SQLite persistence for the client's local state.
//
// Key Implementations:
//   - [KVRepository] : a string key/value table, the local analogue of browser storage
//   - [SessionRepository] : stored backend sessions with soft deletes
//
// Sequence numbers provide stable, human-readable ordering (e.g., session #3) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories

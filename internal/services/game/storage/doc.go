// Package storage defines the campaign persistence boundary.
//
// Each campaign owns an append-only event log and an optional snapshot of the
// state folded up to some seq. Backends (file, sqlite, memory) implement
// EventLog and SnapshotStore; Repository composes them with the campaign
// reducer.
//
// Common error types:
//   - ErrNotFound: requested record is missing
//   - ErrSeqMismatch: an append presented a stale expected seq
package storage

// Package state defines the governor's persisted state document and the
// Store abstraction that carries it across independent process invocations.
//
// The document is a single aggregate: an ordered call log, a map of open
// circuits, and the timestamp of the last garbage-collection pass. Every
// governor operation is a load-mutate-save cycle over the whole document.
//
// Three stores are provided:
//
//   - FileStore: a JSON document on disk. Assumes a single writer; two
//     unsynchronized writers racing a load-mutate-save cycle clobber each
//     other last-writer-wins. This is the documented best-effort mode.
//   - MemStore: in-memory, for tests and the conformance harness.
//   - SQLiteStore: transactional SQLite (WAL, busy timeout) for callers
//     that need concurrent invocations to serialize on the database lock.
//
// All stores fail open on load: a missing, unreadable, or malformed
// document yields a fresh empty state, never an error. Availability of the
// admission decision is favored over strict historical accuracy.
package state

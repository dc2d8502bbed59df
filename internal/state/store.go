package state

// Store persists the governor state document. Implementations are injected
// into the governor so tests can run against memory and production against
// a file or a database.
type Store interface {
	// Load returns the current document. Implementations must fail open:
	// a missing, unreadable, or malformed backing document yields a fresh
	// empty state (logged), never an error.
	Load() *State

	// Save overwrites the backing document with the complete state.
	// The error is surfaced so callers can retry, alert, or proceed
	// degraded; a lost save can only under-count history on the next
	// load, never over-count.
	Save(*State) error
}

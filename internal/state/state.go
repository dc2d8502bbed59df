package state

import "time"

// CallRecord is one historical invocation event in the call log.
type CallRecord struct {
	// ID is a UUIDv7 assigned when the call is recorded. Time-sortable,
	// used for audit correlation only; ordering uses log position.
	ID string `json:"id"`

	// Identifier names the kind of work unit invoked (opaque key).
	Identifier string `json:"identifier"`

	// Parent is the identifier of the inviting work unit.
	// Empty for top-level calls.
	Parent string `json:"parent,omitempty"`

	// Timestamp is when the call was recorded.
	Timestamp time.Time `json:"timestamp"`

	// Depth is the recursion depth computed at insertion time.
	Depth int `json:"depth"`
}

// State is the single persisted document. It is mutated by every check and
// record operation and destroyed only by an explicit reset.
type State struct {
	// Calls holds call records in insertion order. Entries older than the
	// cooldown period are pruned by the garbage collector.
	Calls []CallRecord `json:"calls"`

	// OpenCircuits maps identifier to the time its circuit opened.
	// Presence means deny-by-default until the cooldown elapses.
	OpenCircuits map[string]time.Time `json:"open_circuits"`

	// LastCleanup is the time of the most recent garbage-collection pass.
	LastCleanup time.Time `json:"last_cleanup"`
}

// NewState returns an empty document.
func NewState() *State {
	return &State{
		Calls:        []CallRecord{},
		OpenCircuits: make(map[string]time.Time),
	}
}

// normalize repairs zero-value fields after decoding, so callers can index
// the circuits map and range the call log without nil checks.
func (s *State) normalize() *State {
	if s.Calls == nil {
		s.Calls = []CallRecord{}
	}
	if s.OpenCircuits == nil {
		s.OpenCircuits = make(map[string]time.Time)
	}
	return s
}

// Clone returns a deep copy of the document.
func (s *State) Clone() *State {
	c := &State{
		Calls:        make([]CallRecord, len(s.Calls)),
		OpenCircuits: make(map[string]time.Time, len(s.OpenCircuits)),
		LastCleanup:  s.LastCleanup,
	}
	copy(c.Calls, s.Calls)
	for id, openedAt := range s.OpenCircuits {
		c.OpenCircuits[id] = openedAt
	}
	return c
}

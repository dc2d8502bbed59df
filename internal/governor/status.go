package governor

import (
	"sort"

	"github.com/roach88/gatekeep/internal/state"
)

// IdentifierStatus is the read-only diagnostic view for one identifier.
type IdentifierStatus struct {
	Identifier string `json:"identifier"`

	// TotalCalls counts every record still in history.
	TotalCalls int `json:"total_calls"`

	// RecentCalls counts records inside the trailing window.
	RecentCalls int `json:"recent_calls"`

	// Depth is the chain depth a new call would be assigned right now.
	Depth int `json:"depth"`

	// CircuitOpen reports whether the circuit is open and its cooldown
	// still running. An expired entry awaiting lazy close reads as closed.
	CircuitOpen bool `json:"circuit_open"`

	// CooldownRemaining is the whole seconds left on an open circuit.
	CooldownRemaining int `json:"cooldown_remaining,omitempty"`
}

// Status returns the diagnostic view for every identifier present in the
// history or the circuit map, sorted by identifier. It never mutates or
// persists state: no GC runs and no lazy circuit close happens here.
func (g *Governor) Status() []IdentifierStatus {
	now := g.clock.Now()
	st := g.store.Load()

	seen := make(map[string]bool)
	for _, rec := range st.Calls {
		seen[rec.Identifier] = true
	}
	for identifier := range st.OpenCircuits {
		seen[identifier] = true
	}

	identifiers := make([]string, 0, len(seen))
	for identifier := range seen {
		identifiers = append(identifiers, identifier)
	}
	sort.Strings(identifiers)

	statuses := make([]IdentifierStatus, 0, len(identifiers))
	for _, identifier := range identifiers {
		status := IdentifierStatus{
			Identifier:  identifier,
			RecentCalls: frequency(st.Calls, identifier, now),
			Depth:       chainDepth(st.Calls, identifier, now),
		}
		for _, rec := range st.Calls {
			if rec.Identifier == identifier {
				status.TotalCalls++
			}
		}
		if openedAt, open := st.OpenCircuits[identifier]; open {
			if elapsed := now.Sub(openedAt); elapsed < g.limits.Cooldown {
				status.CircuitOpen = true
				status.CooldownRemaining = remainingSeconds(g.limits.Cooldown - elapsed)
			}
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Reset removes the identifier's open-circuit entry and purges its records,
// leaving every other identifier untouched.
func (g *Governor) Reset(identifier string) error {
	identifier = NormalizeIdentifier(identifier)

	now := g.clock.Now()
	st := g.load(now)

	delete(st.OpenCircuits, identifier)
	kept := st.Calls[:0]
	for _, rec := range st.Calls {
		if rec.Identifier != identifier {
			kept = append(kept, rec)
		}
	}
	st.Calls = kept

	return g.persist(st)
}

// ResetAll replaces the entire document with a fresh empty one.
func (g *Governor) ResetAll() error {
	st := state.NewState()
	st.LastCleanup = g.clock.Now()
	return g.persist(st)
}

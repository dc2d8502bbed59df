package governor

import (
	"time"

	"github.com/roach88/gatekeep/internal/state"
)

// cleanup prunes stale history and expired circuits in place. It is a
// no-op unless the cleanup interval has elapsed since the last pass, which
// amortizes the cost across many short-lived invocations instead of paying
// it on every check. Reports whether the state was mutated.
//
// Records and circuits at least as old as the cooldown period are removed.
// For circuits this is the opportunistic OPEN -> CLOSED transition,
// mirroring the lazy one in Check.
func (g *Governor) cleanup(st *state.State, now time.Time) bool {
	if now.Sub(st.LastCleanup) < g.limits.CleanupInterval {
		return false
	}

	cutoff := now.Add(-g.limits.Cooldown)

	kept := st.Calls[:0]
	for _, rec := range st.Calls {
		if rec.Timestamp.After(cutoff) {
			kept = append(kept, rec)
		}
	}
	st.Calls = kept

	for identifier, openedAt := range st.OpenCircuits {
		if !openedAt.After(cutoff) {
			delete(st.OpenCircuits, identifier)
		}
	}

	st.LastCleanup = now
	return true
}

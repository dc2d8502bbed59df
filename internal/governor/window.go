package governor

import (
	"time"

	"github.com/roach88/gatekeep/internal/state"
)

// frequency counts the identifier's records inside the trailing window.
// A linear scan over the GC-bounded history; no bucketing needed.
func frequency(calls []state.CallRecord, identifier string, now time.Time) int {
	cutoff := now.Add(-Window)
	count := 0
	for _, rec := range calls {
		if rec.Identifier == identifier && rec.Timestamp.After(cutoff) {
			count++
		}
	}
	return count
}

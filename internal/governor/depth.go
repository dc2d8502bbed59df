package governor

import (
	"time"

	"github.com/roach88/gatekeep/internal/state"
)

// chainDepth reconstructs the recursion depth a new call of identifier
// would have, using only records inside the trailing window.
//
// The log is scanned newest-to-oldest with a moving pointer seeded at
// identifier. Each record matching the pointer contributes its recorded
// depth plus one, and advances the pointer to that record's parent. The
// scan tolerates interleaved records from unrelated chains and terminates
// when the pointer empties (a top-level call was reached) or the window is
// exhausted.
func chainDepth(calls []state.CallRecord, identifier string, now time.Time) int {
	cutoff := now.Add(-Window)
	pointer := identifier
	depth := 0

	for i := len(calls) - 1; i >= 0 && pointer != ""; i-- {
		rec := calls[i]
		if !rec.Timestamp.After(cutoff) {
			continue
		}
		if rec.Identifier == pointer {
			if rec.Depth+1 > depth {
				depth = rec.Depth + 1
			}
			pointer = rec.Parent
		}
	}
	return depth
}

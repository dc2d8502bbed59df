package governor

import "time"

// Clock supplies the current wall time. Injected so tests can drive
// cooldown expiry, window edges, and garbage-collection gating exactly.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the host wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

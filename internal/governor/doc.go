// Package governor admits or refuses recursive agent calls.
//
// The governor is a circuit breaker over a persisted call log. Per
// identifier it enforces two thresholds inside a trailing 60-second window:
// reconstructed recursion depth and call frequency. Breaching either opens
// the identifier's circuit; an open circuit denies every call until the
// cooldown elapses, at which point the next check closes it lazily and
// re-evaluates normally.
//
// There is no live call stack to inspect: the calling processes are
// independent and short-lived. Depth is therefore reconstructed by walking
// the windowed call log newest-to-oldest, following parent links.
//
// The governor has no internal concurrency. Every operation is a
// synchronous load-mutate-save cycle over the injected state.Store;
// checking and recording are independent operations by contract, and the
// breaker is only correct if callers check before they record.
package governor

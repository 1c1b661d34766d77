package resilience

import "errors"

// Sentinel errors returned when a pattern rejects a fetch/mutation attempt
// before (or instead of) letting it run.
var (
	// ErrCircuitOpen is returned when the circuit breaker is rejecting
	// attempts outright.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrMaxRetriesExceeded names exhausted retry attempts. No pattern in
	// this package returns it; IsRejection still recognizes it.
	ErrMaxRetriesExceeded = errors.New("resilience: max retries exceeded")

	// ErrRateLimitExceeded is returned when an attempt exceeds the
	// configured rate.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrBulkheadFull is returned when no concurrency slot is available
	// for an attempt.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrTimeout is returned when an attempt exceeds its deadline.
	ErrTimeout = errors.New("resilience: operation timed out")
)

// IsRejection reports whether err came from a resilience pattern itself
// (the attempt was never let through to run, or ErrTimeout cut it short)
// rather than from the fetch/mutation function it guards. Callers that log or count attempt
// failures can use this to separate "the resource errored" from "we chose
// not to call it" — the latter is not evidence the resource is unhealthy.
func IsRejection(err error) bool {
	switch err {
	case ErrCircuitOpen, ErrMaxRetriesExceeded, ErrRateLimitExceeded, ErrBulkheadFull, ErrTimeout:
		return true
	default:
		return false
	}
}

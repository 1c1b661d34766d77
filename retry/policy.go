package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// NetworkMode controls whether a fetch attempt is gated by online state.
type NetworkMode int

const (
	// NetworkOnline withholds execution entirely while offline.
	NetworkOnline NetworkMode = iota
	// NetworkAlways ignores network state.
	NetworkAlways
	// NetworkOfflineFirst always runs the first attempt; subsequent
	// retries are gated by online state like NetworkOnline.
	NetworkOfflineFirst
)

// Policy normalizes "boolean | count | predicate" retry and retryDelay
// option typing into plain functions — a sum type expressed as its own
// evaluate(...) normalizer.
type Policy struct {
	// ShouldRetry decides whether a failed attempt is retried. failureCount
	// is the number of failures before that attempt (0 after the first
	// failure), so RetryTimes(n) allows n retries after the first attempt.
	ShouldRetry func(failureCount int, err error) bool

	// Delay computes the backoff before the next attempt.
	Delay func(failureCount int, err error) time.Duration

	NetworkMode NetworkMode
}

// DefaultPolicy retries up to 3 times with exponential backoff, gated by
// online state.
func DefaultPolicy() Policy {
	return Policy{
		ShouldRetry: RetryTimes(3),
		Delay:       WithJitter(DefaultDelay),
		NetworkMode: NetworkOnline,
	}
}

// RetryAlways never gives up.
func RetryAlways(int, error) bool { return true }

// RetryNever disables retry entirely (a single attempt only).
func RetryNever(int, error) bool { return false }

// RetryTimes retries up to n times.
func RetryTimes(n int) func(int, error) bool {
	return func(failureCount int, _ error) bool { return failureCount < n }
}

// RetryIf adapts a boolean predicate over the error alone into the
// (failureCount, error) shape ShouldRetry expects.
func RetryIf(pred func(err error) bool) func(int, error) bool {
	return func(_ int, err error) bool { return pred(err) }
}

const defaultMaxDelay = 30 * time.Second

// DefaultDelay is 1000ms * 2^failureCount, capped at 30s.
func DefaultDelay(failureCount int, _ error) time.Duration {
	d := time.Duration(1000*math.Pow(2, float64(failureCount))) * time.Millisecond
	if d > defaultMaxDelay {
		d = defaultMaxDelay
	}
	if d < 0 {
		d = defaultMaxDelay
	}
	return d
}

// ConstantDelay always waits d between attempts.
func ConstantDelay(d time.Duration) func(int, error) time.Duration {
	return func(int, error) time.Duration { return d }
}

// WithJitter wraps a delay function with up to 25% random jitter, spreading
// out retries from many entries that failed at the same moment.
func WithJitter(delay func(int, error) time.Duration) func(int, error) time.Duration {
	return func(failureCount int, err error) time.Duration {
		d := delay(failureCount, err)
		if d <= 0 {
			return d
		}
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		jitter := time.Duration(rand.Int64N(int64(d)/4 + 1))
		return d + jitter
	}
}

// CanFetch reports whether an attempt may run given online state.
// True except NetworkOnline while offline.
func (p Policy) CanFetch(online bool) bool {
	if p.NetworkMode == NetworkOnline {
		return online
	}
	return true
}

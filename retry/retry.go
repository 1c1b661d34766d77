// Package retry implements the pausable, resumable retry engine that
// backs both entry fetches and mutations: a single attempt function wrapped
// in a retry policy, a network-mode pause gate, and cooperative cancellation
// shaped like a DOM AbortSignal (silent vs reverting).
package retry

import (
	"context"
	"sync"
	"time"
)

// CancelledError is returned (and recorded as the settled error) when a
// Retryer is cancelled before or during an attempt.
type CancelledError struct {
	// Silent suppresses onError side effects at the Entry layer — the
	// caller is expected to already know why the fetch stopped.
	Silent bool
	// Revert asks the caller to restore pre-fetch state instead of
	// recording the cancellation as the entry's error.
	Revert bool
}

func (e *CancelledError) Error() string { return "retry: attempt cancelled" }

// AsCancelled reports whether err is a *CancelledError.
func AsCancelled(err error) (*CancelledError, bool) {
	ce, ok := err.(*CancelledError)
	return ce, ok
}

// Config wires one retryable attempt function to its policy and lifecycle
// hooks. Fn is called once per attempt; Online, when non-nil, is consulted
// before every attempt to decide whether the policy's NetworkMode allows it
// to run.
type Config[T any] struct {
	Fn     func(ctx context.Context) (T, error)
	Abort  func()
	Policy Policy
	Online func() bool

	OnSuccess func(value T)
	OnError   func(err error)
	OnFail    func(failureCount int, err error)
	OnPause   func()
	OnContinue func()
}

// Retryer drives Config.Fn through Config.Policy until it succeeds, is
// exhausted, or is cancelled. It starts idle; call Start to run it, and
// Wait to block for its settled result. A Retryer is single-use.
type Retryer[T any] struct {
	cfg Config[T]

	mu             sync.Mutex
	failureCount   int
	cancelled      *CancelledError
	retryCancelled bool
	paused         bool

	wake   chan struct{}
	doneCh chan struct{}

	result    T
	resultErr error
}

// New builds a Retryer from cfg, filling unset Policy fields with defaults.
func New[T any](cfg Config[T]) *Retryer[T] {
	if cfg.Policy.ShouldRetry == nil {
		cfg.Policy.ShouldRetry = RetryNever
	}
	if cfg.Policy.Delay == nil {
		cfg.Policy.Delay = DefaultDelay
	}
	if cfg.Online == nil {
		cfg.Online = func() bool { return true }
	}
	return &Retryer[T]{
		cfg:    cfg,
		wake:   make(chan struct{}, 1),
		doneCh: make(chan struct{}),
	}
}

// Start begins execution in its own goroutine and returns immediately.
func (r *Retryer[T]) Start(ctx context.Context) {
	go r.run(ctx)
}

// Wait blocks until the Retryer has settled and returns its result.
func (r *Retryer[T]) Wait() (T, error) {
	<-r.doneCh
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, r.resultErr
}

// Done reports a channel closed once the Retryer has settled.
func (r *Retryer[T]) Done() <-chan struct{} { return r.doneCh }

// IsPaused reports whether the Retryer is currently withheld by its
// network-mode pause gate.
func (r *Retryer[T]) IsPaused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// FailureCount returns the number of failed attempts so far.
func (r *Retryer[T]) FailureCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failureCount
}

// Cancel stops the Retryer. If an attempt is in flight, Abort (if set) is
// invoked so Fn can observe the cancellation (e.g. via a derived context);
// the Retryer settles with a *CancelledError carrying opts once the current
// wait or attempt unwinds.
func (r *Retryer[T]) Cancel(opts CancelOptions) {
	r.mu.Lock()
	if r.cancelled == nil {
		r.cancelled = &CancelledError{Silent: opts.Silent, Revert: opts.Revert}
	}
	r.mu.Unlock()
	if r.cfg.Abort != nil {
		r.cfg.Abort()
	}
	r.signal()
}

// CancelOptions configures Cancel.
type CancelOptions struct {
	Silent bool
	Revert bool
}

// CancelRetry stops future retries but lets the in-flight attempt settle
// normally, so a late success is still cached instead of discarded.
func (r *Retryer[T]) CancelRetry() {
	r.mu.Lock()
	r.retryCancelled = true
	r.mu.Unlock()
}

// ContinueRetry clears a prior CancelRetry, re-arming the retry loop. Used
// when a paused/cancelled fetch is reused instead of replaced.
func (r *Retryer[T]) ContinueRetry() {
	r.mu.Lock()
	r.retryCancelled = false
	r.mu.Unlock()
}

// Continue wakes a paused Retryer (or one waiting out its backoff delay) so
// it re-evaluates whether it can proceed. Called from entry.Entry's
// focus/online hooks and when paused mutations are resumed.
func (r *Retryer[T]) Continue() {
	if r.cfg.OnContinue != nil {
		r.cfg.OnContinue()
	}
	r.signal()
}

func (r *Retryer[T]) signal() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Retryer[T]) run(ctx context.Context) {
	defer close(r.doneCh)

	firstAttempt := true
	for {
		if !r.gateCanRun(firstAttempt) {
			r.setPaused(true)
			if r.cfg.OnPause != nil {
				r.cfg.OnPause()
			}
			if !r.waitWoken(ctx) {
				r.settleFromInterrupt(ctx)
				return
			}
			r.setPaused(false)
		}

		if r.isCancelled() {
			r.settleCancelled()
			return
		}

		value, err := r.cfg.Fn(ctx)
		firstAttempt = false

		if err == nil {
			if r.isCancelled() {
				r.settleCancelled()
				return
			}
			r.settleSuccess(value)
			return
		}

		r.mu.Lock()
		r.failureCount++
		fc := r.failureCount
		r.mu.Unlock()

		if r.cfg.OnFail != nil {
			r.cfg.OnFail(fc, err)
		}

		if r.isCancelled() {
			r.settleCancelled()
			return
		}

		if r.isRetryCancelled() {
			r.settleError(err)
			return
		}

		if !r.cfg.Policy.ShouldRetry(fc-1, err) {
			r.settleError(err)
			return
		}

		if !r.waitDelay(ctx, r.cfg.Policy.Delay(fc, err)) {
			r.settleFromInterrupt(ctx)
			return
		}
	}
}

func (r *Retryer[T]) gateCanRun(firstAttempt bool) bool {
	if firstAttempt && r.cfg.Policy.NetworkMode == NetworkOfflineFirst {
		return true
	}
	return r.cfg.Policy.CanFetch(r.cfg.Online())
}

func (r *Retryer[T]) waitWoken(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-r.wake:
		return !r.isCancelled()
	}
}

func (r *Retryer[T]) waitDelay(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return !r.isCancelled()
	case <-r.wake:
		return !r.isCancelled()
	}
}

func (r *Retryer[T]) isCancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled != nil
}

func (r *Retryer[T]) isRetryCancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryCancelled
}

func (r *Retryer[T]) setPaused(p bool) {
	r.mu.Lock()
	r.paused = p
	r.mu.Unlock()
}

func (r *Retryer[T]) settleFromInterrupt(ctx context.Context) {
	if r.isCancelled() {
		r.settleCancelled()
		return
	}
	r.settleError(ctx.Err())
}

func (r *Retryer[T]) settleSuccess(v T) {
	r.mu.Lock()
	r.result = v
	r.mu.Unlock()
	if r.cfg.OnSuccess != nil {
		r.cfg.OnSuccess(v)
	}
}

func (r *Retryer[T]) settleError(err error) {
	r.mu.Lock()
	r.resultErr = err
	r.mu.Unlock()
	if r.cfg.OnError != nil {
		r.cfg.OnError(err)
	}
}

func (r *Retryer[T]) settleCancelled() {
	r.mu.Lock()
	ce := r.cancelled
	if ce == nil {
		ce = &CancelledError{}
	}
	r.resultErr = ce
	r.mu.Unlock()
	if r.cfg.OnError != nil {
		r.cfg.OnError(ce)
	}
}

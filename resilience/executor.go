package resilience

import (
	"context"
	"time"
)

// Executor composes bulkhead/rate-limit/circuit-breaker/timeout patterns
// around a single fetch or mutation attempt. Retry/backoff itself is not
// one of these patterns — that concern belongs entirely to retry.Retryer,
// which every Entry and Mutation already wraps its attempt function in;
// Executor sits client-side of that, gating whether an attempt is allowed
// to start at all.
type Executor struct {
	circuitBreaker *CircuitBreaker
	rateLimiter    *RateLimiter
	bulkhead       *Bulkhead
	timeout        *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new resilience executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCircuitBreaker adds a circuit breaker to the executor.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) {
		e.circuitBreaker = cb
	}
}

// WithRateLimiter adds rate limiting to the executor.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) {
		e.rateLimiter = rl
	}
}

// WithBulkhead adds bulkhead isolation to the executor.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) {
		e.bulkhead = b
	}
}

// WithTimeout adds timeout to the executor.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = NewTimeout(TimeoutConfig{Timeout: timeout})
	}
}

// WithTimeoutConfig adds timeout with custom config to the executor.
func WithTimeoutConfig(t *Timeout) ExecutorOption {
	return func(e *Executor) {
		e.timeout = t
	}
}

// CircuitBreaker returns the executor's configured circuit breaker, or nil
// if none was set — used to register a CircuitBreakerChecker for the same
// breaker guarding fetch/mutation attempts.
func (e *Executor) CircuitBreaker() *CircuitBreaker { return e.circuitBreaker }

// Bulkhead returns the executor's configured bulkhead, or nil if none was
// set — used to register a BulkheadChecker for the same bulkhead guarding
// fetch/mutation attempts.
func (e *Executor) Bulkhead() *Bulkhead { return e.bulkhead }

// Execute runs op through every configured pattern, outermost to
// innermost: rate limiter, bulkhead, circuit breaker, timeout.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	execute := op

	if e.timeout != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.timeout.Execute(ctx, inner)
		}
	}
	if e.circuitBreaker != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.circuitBreaker.Execute(ctx, inner)
		}
	}
	if e.bulkhead != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.bulkhead.Execute(ctx, inner)
		}
	}
	if e.rateLimiter != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.rateLimiter.Execute(ctx, inner)
		}
	}

	return execute(ctx)
}

// WrapFetchFunc runs fn under every pattern e has configured, so a
// query's fetch attempt is subject to the same bulkhead/rate-limit/
// circuit-breaker/timeout gating as any other resource call — without
// touching retry.Retryer's own attempt loop, which calls the wrapped
// function once per attempt regardless.
func WrapFetchFunc(e *Executor, fn func(ctx context.Context) (any, error)) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		var (
			result any
			fnErr  error
		)
		err := e.Execute(ctx, func(ctx context.Context) error {
			result, fnErr = fn(ctx)
			if fnErr != nil {
				return fnErr
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return result, fnErr
	}
}

// WrapMutationFn is WrapFetchFunc's counterpart for a mutation write
// function, which additionally threads the mutation's variables through.
func WrapMutationFn(e *Executor, fn func(ctx context.Context, variables any) (any, error)) func(context.Context, any) (any, error) {
	return func(ctx context.Context, variables any) (any, error) {
		var (
			result any
			fnErr  error
		)
		err := e.Execute(ctx, func(ctx context.Context) error {
			result, fnErr = fn(ctx, variables)
			if fnErr != nil {
				return fnErr
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return result, fnErr
	}
}

package diagnostics

import (
	"context"
	"fmt"

	"github.com/asyncache/asyncache/resilience"
)

// CircuitBreakerChecker surfaces a resilience.CircuitBreaker's state as a
// diagnostic result, so a tripped breaker guarding some fetch or mutation
// shows up in a health aggregator the same way cache staleness does.
type CircuitBreakerChecker struct {
	name string
	cb   *resilience.CircuitBreaker
}

// NewCircuitBreakerChecker creates a checker bound to cb. name identifies
// the guarded resource (a host, an endpoint group) in results.
func NewCircuitBreakerChecker(name string, cb *resilience.CircuitBreaker) *CircuitBreakerChecker {
	return &CircuitBreakerChecker{name: name, cb: cb}
}

// Name returns the name of this checker.
func (c *CircuitBreakerChecker) Name() string { return "circuit_breaker:" + c.name }

// Check reports StateOpen as Unhealthy, StateHalfOpen as Degraded (a probe
// is in flight to decide the outcome), and StateClosed as Healthy.
func (c *CircuitBreakerChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	m := c.cb.Metrics()
	details := map[string]any{
		"state":     m.State.String(),
		"failures":  m.Failures,
		"successes": m.Successes,
	}

	switch m.State {
	case resilience.StateOpen:
		return Unhealthy(
			fmt.Sprintf("%s: circuit open after %d failure(s)", c.name, m.Failures),
			resilience.ErrCircuitOpen,
		).WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded(
			fmt.Sprintf("%s: circuit half-open, probing recovery", c.name),
		).WithDetails(details)
	default:
		return Healthy(
			fmt.Sprintf("%s: circuit closed", c.name),
		).WithDetails(details)
	}
}

// BulkheadChecker surfaces a resilience.Bulkhead's saturation as a
// diagnostic result.
type BulkheadChecker struct {
	name             string
	b                *resilience.Bulkhead
	degradedAtRatio  float64
	unhealthyAtRatio float64
}

// NewBulkheadChecker creates a checker bound to b. degradedAtRatio and
// unhealthyAtRatio (both in (0,1]) are the active/MaxConcurrent ratios at
// which the checker starts reporting Degraded/Unhealthy; 0 picks the
// defaults of 0.8 and 1.0.
func NewBulkheadChecker(name string, b *resilience.Bulkhead, degradedAtRatio, unhealthyAtRatio float64) *BulkheadChecker {
	if degradedAtRatio <= 0 {
		degradedAtRatio = 0.8
	}
	if unhealthyAtRatio <= 0 {
		unhealthyAtRatio = 1.0
	}
	return &BulkheadChecker{name: name, b: b, degradedAtRatio: degradedAtRatio, unhealthyAtRatio: unhealthyAtRatio}
}

// Name returns the name of this checker.
func (c *BulkheadChecker) Name() string { return "bulkhead:" + c.name }

// Check reports how saturated the bulkhead's concurrency slots are.
func (c *BulkheadChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	m := c.b.Metrics()
	var ratio float64
	if m.MaxConcurrent > 0 {
		ratio = float64(m.Active) / float64(m.MaxConcurrent)
	}
	details := map[string]any{
		"active":         m.Active,
		"max_concurrent": m.MaxConcurrent,
		"rejected":       m.Rejected,
	}

	if ratio >= c.unhealthyAtRatio {
		return Unhealthy(
			fmt.Sprintf("%s: bulkhead at capacity (%d/%d)", c.name, m.Active, m.MaxConcurrent),
			resilience.ErrBulkheadFull,
		).WithDetails(details)
	}
	if ratio >= c.degradedAtRatio {
		return Degraded(
			fmt.Sprintf("%s: bulkhead nearly saturated (%d/%d)", c.name, m.Active, m.MaxConcurrent),
		).WithDetails(details)
	}
	return Healthy(
		fmt.Sprintf("%s: bulkhead has headroom (%d/%d)", c.name, m.Active, m.MaxConcurrent),
	).WithDetails(details)
}

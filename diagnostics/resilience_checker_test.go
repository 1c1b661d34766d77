package diagnostics

import (
	"context"
	"errors"
	"testing"

	"github.com/asyncache/asyncache/resilience"
)

func TestCircuitBreakerChecker_Closed(t *testing.T) {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{})
	checker := NewCircuitBreakerChecker("upstream", cb)

	if checker.Name() != "circuit_breaker:upstream" {
		t.Errorf("Name() = %v, want 'circuit_breaker:upstream'", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", result.Status)
	}
}

func TestCircuitBreakerChecker_Open(t *testing.T) {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{MaxFailures: 1})
	_ = cb.Execute(context.Background(), func(context.Context) error {
		return errors.New("boom")
	})

	checker := NewCircuitBreakerChecker("upstream", cb)
	result := checker.Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want StatusUnhealthy", result.Status)
	}
	if !errors.Is(result.Error, resilience.ErrCircuitOpen) {
		t.Errorf("Error = %v, want ErrCircuitOpen", result.Error)
	}
}

func TestBulkheadChecker_Headroom(t *testing.T) {
	b := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 10})
	checker := NewBulkheadChecker("upstream", b, 0, 0)

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", result.Status)
	}
}

func TestBulkheadChecker_AtCapacity(t *testing.T) {
	b := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 2})
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	checker := NewBulkheadChecker("upstream", b, 0, 0)
	result := checker.Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want StatusUnhealthy", result.Status)
	}
}

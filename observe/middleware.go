package observe

import (
	"context"
	"time"
)

// ExecuteFunc is the signature for a single fetch attempt that Middleware
// wraps with tracing, metrics, and logging.
type ExecuteFunc func(ctx context.Context, query QueryMeta, input any) (any, error)

// Middleware wraps fetch execution with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe ExecuteFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from wrapped function are recorded and propagated unchanged.
//   - Ownership: Input/output values are passed through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps an ExecuteFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, query QueryMeta, input any) (any, error) {
		ctx, span := m.tracer.StartSpan(ctx, query)

		start := time.Now()
		result, err := fn(ctx, query, input)
		duration := time.Since(start)

		m.tracer.EndSpan(span, err)
		m.metrics.RecordExecution(ctx, query, duration, err)

		queryLogger := m.logger.WithQuery(query)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}

		switch {
		case err != nil && IsSilentCancellation(err):
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			queryLogger.Debug(ctx, "query fetch cancelled", fields...)
		case err != nil:
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			queryLogger.Error(ctx, "query fetch failed", fields...)
		default:
			queryLogger.Info(ctx, "query fetch completed", fields...)
		}

		return result, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}

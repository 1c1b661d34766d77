package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// QueryMeta identifies the fetch attempt a span or log line belongs to.
type QueryMeta struct {
	Hash string // canonical key hash (entry.Entry.Hash / key.Hash)
	Key  any    // the raw key, for structured logging/attributes
	Tags []string
}

// SpanName returns the deterministic span name for this fetch: query.fetch.<hash>.
func (m QueryMeta) SpanName() string {
	return "query.fetch." + m.Hash
}

// Validate reports whether meta carries a usable hash.
func (m QueryMeta) Validate() error {
	if m.Hash == "" {
		return ErrMissingQueryHash
	}
	return nil
}

// Tracer wraps OpenTelemetry tracing with per-fetch span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan returns a context derived from ctx that carries the new span.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a fetch attempt.
	StartSpan(ctx context.Context, meta QueryMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with query metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta QueryMeta) (context.Context, trace.Span) {
	spanName := meta.SpanName()

	attrs := []attribute.KeyValue{
		attribute.String("query.hash", meta.Hash),
		attribute.Bool("query.error", false), // updated in EndSpan on failure
	}
	if len(meta.Tags) > 0 {
		attrs = append(attrs, attribute.StringSlice("query.tags", meta.Tags))
	}

	ctx, span := t.tracer.Start(ctx, spanName,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present. A
// silently cancelled attempt closes the span as Ok rather than Error —
// the caller chose to abandon it, so it isn't evidence anything failed.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil && !IsSilentCancellation(err) {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("query.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta QueryMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}

package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/asyncache/asyncache/retry"
)

// TestQueryMeta_SpanName verifies span name derivation from the hash.
func TestQueryMeta_SpanName(t *testing.T) {
	meta := QueryMeta{Hash: "a1b2c3"}

	expected := "query.fetch.a1b2c3"
	if got := meta.SpanName(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

// TestQueryMeta_Validate verifies hash is required.
func TestQueryMeta_Validate(t *testing.T) {
	if err := (QueryMeta{Hash: "a1b2c3"}).Validate(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := (QueryMeta{}).Validate(); !errors.Is(err, ErrMissingQueryHash) {
		t.Errorf("expected ErrMissingQueryHash, got %v", err)
	}
}

// TestTracer_SpanAttributes verifies all attributes are present on span.
func TestTracer_SpanAttributes(t *testing.T) {
	// Set up in-memory span recorder
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := QueryMeta{
		Hash: "github.create_issue",
		Tags: []string{"api", "github"},
	}

	ctx, span := tr.StartSpan(context.Background(), meta)
	tr.EndSpan(span, nil)
	_ = ctx // Suppress unused warning

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]

	// Verify span name
	if s.Name() != "query.fetch.github.create_issue" {
		t.Errorf("expected span name 'query.fetch.github.create_issue', got %q", s.Name())
	}

	// Verify attributes
	attrs := s.Attributes()
	attrMap := make(map[string]attribute.Value)
	for _, a := range attrs {
		attrMap[string(a.Key)] = a.Value
	}

	// Required attributes
	if v, ok := attrMap["query.hash"]; !ok || v.AsString() != "github.create_issue" {
		t.Errorf("expected query.hash='github.create_issue', got %v", v)
	}
	if v, ok := attrMap["query.error"]; !ok || v.AsBool() != false {
		t.Errorf("expected query.error=false, got %v", v)
	}

	// Optional attributes
	if v, ok := attrMap["query.tags"]; !ok || len(v.AsStringSlice()) != 2 {
		t.Errorf("expected query.tags=[api github], got %v", v)
	}
}

// TestTracer_SpanAttributesMinimal verifies only required attributes when minimal meta.
func TestTracer_SpanAttributesMinimal(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := QueryMeta{Hash: "read_file"}

	ctx, span := tr.StartSpan(context.Background(), meta)
	tr.EndSpan(span, nil)
	_ = ctx

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]
	attrs := s.Attributes()
	attrMap := make(map[string]attribute.Value)
	for _, a := range attrs {
		attrMap[string(a.Key)] = a.Value
	}

	// Required attributes should be present
	if _, ok := attrMap["query.hash"]; !ok {
		t.Error("expected query.hash attribute")
	}
	if _, ok := attrMap["query.error"]; !ok {
		t.Error("expected query.error attribute")
	}

	// Optional attributes should NOT be present when no tags given
	if _, ok := attrMap["query.tags"]; ok {
		t.Error("expected no query.tags attribute")
	}
}

// TestTracer_ContextPropagation verifies parent span is propagated.
func TestTracer_ContextPropagation(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := QueryMeta{Hash: "child_query"}

	// Create parent span
	parentCtx, parentSpan := tracer.Start(context.Background(), "parent")

	// Create child span through our tracer
	childCtx, childSpan := tr.StartSpan(parentCtx, meta)
	tr.EndSpan(childSpan, nil)
	parentSpan.End()
	_ = childCtx

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	// Find the child span (the one with query.fetch prefix)
	var child sdktrace.ReadOnlySpan
	for _, s := range spans {
		if s.Name() == "query.fetch.child_query" {
			child = s
			break
		}
	}
	if child == nil {
		t.Fatal("child span not found")
	}

	// Verify parent-child relationship
	if child.Parent().TraceID() != parentSpan.SpanContext().TraceID() {
		t.Error("child span should have same trace ID as parent")
	}
	if !child.Parent().SpanID().IsValid() {
		t.Error("child span should have valid parent span ID")
	}
}

// TestTracer_ErrorRecording verifies error sets span status and attribute.
func TestTracer_ErrorRecording(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := QueryMeta{Hash: "failing_query"}

	ctx, span := tr.StartSpan(context.Background(), meta)
	testErr := errors.New("execution failed")
	tr.EndSpan(span, testErr)
	_ = ctx

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]

	// Verify error status
	if s.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", s.Status().Code)
	}

	// Verify query.error attribute
	attrs := s.Attributes()
	var queryError bool
	for _, a := range attrs {
		if string(a.Key) == "query.error" {
			queryError = a.Value.AsBool()
			break
		}
	}
	if !queryError {
		t.Error("expected query.error=true")
	}
}

func TestTracer_SilentCancellationEndsSpanOk(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := QueryMeta{Hash: "cancelled_query"}

	_, span := tr.StartSpan(context.Background(), meta)
	tr.EndSpan(span, &retry.CancelledError{Silent: true})

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("expected Ok status for a silent cancellation, got %v", spans[0].Status().Code)
	}
}

package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// BindMeta describes one (runtime type, shape) binding for telemetry purposes.
type BindMeta struct {
	Target  string // Runtime type of the projected object (required)
	Shape   string // Shape display name (required)
	ShapeID string // Structural shape identity (optional)
	Mode    string // copy|proxy (optional)
}

// SpanName returns the deterministic span name for this binding.
// Format: ducktype.bind.<shape>
func (m BindMeta) SpanName() string {
	return "ducktype.bind." + m.Shape
}

// attributes returns the common attribute set for spans and metrics.
func (m BindMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("ducktype.target", m.Target),
		attribute.String("ducktype.shape", m.Shape),
	}
	if m.ShapeID != "" {
		attrs = append(attrs, attribute.String("ducktype.shape_id", m.ShapeID))
	}
	if m.Mode != "" {
		attrs = append(attrs, attribute.String("ducktype.mode", m.Mode))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with binding-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for binding generation.
	StartSpan(ctx context.Context, meta BindMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with binding metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta BindMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(), attribute.Bool("ducktype.mismatch", false))

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("ducktype.mismatch", true))
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

// NopTracer returns a Tracer that records nothing.
func NopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta BindMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}

package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records binding and projection metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly; projections sit on instrumented hot paths.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordBind records one binding generation (a cache miss).
	RecordBind(ctx context.Context, meta BindMeta, duration time.Duration, err error)

	// RecordProjection records one projection request.
	RecordProjection(ctx context.Context, meta BindMeta, cacheHit bool, err error)
}

type metricsImpl struct {
	bindCount       metric.Int64Counter
	mismatchCount   metric.Int64Counter
	bindDuration    metric.Float64Histogram
	projectionCount metric.Int64Counter
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	bindCount, err := meter.Int64Counter(
		"ducktype.bind.total",
		metric.WithDescription("Total number of binding generations"),
		metric.WithUnit("{binding}"),
	)
	if err != nil {
		return nil, err
	}

	mismatchCount, err := meter.Int64Counter(
		"ducktype.bind.mismatch",
		metric.WithDescription("Total number of structural mismatches"),
		metric.WithUnit("{mismatch}"),
	)
	if err != nil {
		return nil, err
	}

	bindDuration, err := meter.Float64Histogram(
		"ducktype.bind.duration_ms",
		metric.WithDescription("Binding generation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	projectionCount, err := meter.Int64Counter(
		"ducktype.projection.total",
		metric.WithDescription("Total number of projection requests"),
		metric.WithUnit("{projection}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		bindCount:       bindCount,
		mismatchCount:   mismatchCount,
		bindDuration:    bindDuration,
		projectionCount: projectionCount,
	}, nil
}

// RecordBind records metrics for a binding generation.
func (m *metricsImpl) RecordBind(ctx context.Context, meta BindMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)

	m.bindCount.Add(ctx, 1, opt)
	if err != nil {
		m.mismatchCount.Add(ctx, 1, opt)
	}
	m.bindDuration.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

// RecordProjection records metrics for a projection request.
func (m *metricsImpl) RecordProjection(ctx context.Context, meta BindMeta, cacheHit bool, err error) {
	attrs := append(meta.attributes(),
		attribute.Bool("cache.hit", cacheHit),
		attribute.Bool("ducktype.error", err != nil),
	)
	m.projectionCount.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return noopMetrics{} }

// MetricsEnabled reports whether m records anything. Callers on hot paths
// use it to skip building metadata for a no-op Metrics.
func MetricsEnabled(m Metrics) bool {
	if m == nil {
		return false
	}
	_, nop := m.(noopMetrics)
	return !nop
}

func (noopMetrics) RecordBind(context.Context, BindMeta, time.Duration, error) {}

func (noopMetrics) RecordProjection(context.Context, BindMeta, bool, error) {}

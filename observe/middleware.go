package observe

import (
	"context"
	"time"
)

// BindFunc generates a binding for the described (type, shape) pair.
type BindFunc func(ctx context.Context, meta BindMeta) (any, error)

// Middleware wraps binding generation with tracing, metrics, and logging.
//
// Contract:
//   - Concurrency: Wrap returns a BindFunc safe for concurrent use.
//   - Context: the span context is propagated into the wrapped function.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
// Nil components are replaced by no-op implementations.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// NopMiddleware returns a Middleware that records nothing.
func NopMiddleware() *Middleware {
	return NewMiddleware(nil, nil, nil)
}

// Metrics returns the metrics recorder used by the middleware.
func (m *Middleware) Metrics() Metrics { return m.metrics }

// Logger returns the logger used by the middleware.
func (m *Middleware) Logger() Logger { return m.logger }

// Wrap wraps a BindFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn BindFunc) BindFunc {
	return func(ctx context.Context, meta BindMeta) (any, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)

		start := time.Now()
		result, err := fn(ctx, meta)
		duration := time.Since(start)

		m.tracer.EndSpan(span, err)
		m.metrics.RecordBind(ctx, meta, duration, err)

		log := m.logger.WithBinding(meta)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
		}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			log.Warn(ctx, "binding rejected", fields...)
		} else {
			log.Debug(ctx, "binding generated", fields...)
		}

		return result, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

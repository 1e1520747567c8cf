package bridge

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/jonwraymond/ducktype/accessor"
	"github.com/jonwraymond/ducktype/cache"
	"github.com/jonwraymond/ducktype/match"
	"github.com/jonwraymond/ducktype/observe"
	"github.com/jonwraymond/ducktype/shape"
)

// Option configures a Bridge.
type Option func(*Bridge)

// Bridge matches runtime types against shapes, caches the resulting
// accessors, and projects objects into views.
//
// Contract:
//   - Concurrency: safe for concurrent use; the cache is the only shared state.
//   - Blocking: no I/O. A caller may wait only on another caller generating
//     the same (type, shape) binding.
//   - Errors: every failure is returned, never panicked.
type Bridge struct {
	matcher *match.Matcher
	cache   *cache.MemoryCache
	policy  cache.Policy

	tracer  observe.Tracer
	metrics observe.Metrics
	logger  observe.Logger
	mw      *observe.Middleware

	recordProjections bool
}

// New creates a Bridge. Without options it uses the default matcher rules,
// an unbounded cache that keeps mismatches, and no telemetry.
func New(opts ...Option) *Bridge {
	b := &Bridge{policy: cache.DefaultPolicy()}
	for _, opt := range opts {
		opt(b)
	}

	if b.matcher == nil {
		b.matcher = match.New()
	}
	if b.cache == nil {
		b.cache = cache.NewMemoryCache(b.policy)
	}
	if b.mw == nil {
		b.mw = observe.NewMiddleware(b.tracer, b.metrics, b.logger)
	}
	b.metrics = b.mw.Metrics()
	b.logger = b.mw.Logger()
	b.recordProjections = observe.MetricsEnabled(b.metrics)
	return b
}

// WithMatcher sets the structural matcher.
func WithMatcher(m *match.Matcher) Option {
	return func(b *Bridge) {
		b.matcher = m
	}
}

// WithCache sets the binding cache. It takes precedence over WithPolicy.
func WithCache(c *cache.MemoryCache) Option {
	return func(b *Bridge) {
		b.cache = c
	}
}

// WithPolicy sets the policy of the bridge-owned cache.
func WithPolicy(p cache.Policy) Option {
	return func(b *Bridge) {
		b.policy = p
	}
}

// WithObserver takes tracer, meter and logger from obs.
func WithObserver(obs observe.Observer) Option {
	return func(b *Bridge) {
		if obs == nil {
			return
		}
		b.tracer = observe.NewTracer(obs.Tracer())
		b.logger = obs.Logger()

		metrics, err := observe.NewMetrics(obs.Meter())
		if err != nil {
			b.logger.Warn(context.Background(), "binding metrics disabled", observe.Field{Key: "error", Value: err.Error()})
			return
		}
		b.metrics = metrics
	}
}

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(b *Bridge) {
		b.logger = l
	}
}

// WithMiddleware sets the middleware around binding generation. It takes
// precedence over WithObserver and WithLogger.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(b *Bridge) {
		b.mw = mw
	}
}

var (
	defaultOnce   sync.Once
	defaultBridge *Bridge
)

// Default returns the process-wide bridge, created on first use with New().
func Default() *Bridge {
	defaultOnce.Do(func() {
		defaultBridge = New()
	})
	return defaultBridge
}

// Cache returns the binding cache.
func (b *Bridge) Cache() *cache.MemoryCache { return b.cache }

// Stats returns cache counters.
func (b *Bridge) Stats() cache.Stats { return b.cache.Stats() }

// Entries returns the cached binding results.
func (b *Bridge) Entries() []*cache.Entry { return b.cache.Entries() }

// Bind returns the accessor for values of type t projected onto s, matching
// and generating it on first use. A structural mismatch is returned as a
// *match.MismatchError and cached like a success.
func (b *Bridge) Bind(ctx context.Context, t reflect.Type, s *shape.Shape) (*accessor.Accessor, error) {
	acc, _, err := b.bind(ctx, t, s)
	return acc, err
}

func (b *Bridge) bind(ctx context.Context, t reflect.Type, s *shape.Shape) (*accessor.Accessor, bool, error) {
	if t == nil {
		return nil, false, ErrNilObject
	}
	if s == nil {
		return nil, false, ErrNilShape
	}

	entry, hit := b.cache.GetOrCreate(cache.KeyOf(t, s.ID()), func() (*accessor.Accessor, error) {
		return b.generate(ctx, t, s)
	})
	// The entry may have been created for another shape with this identity.
	if me, ok := entry.Err.(*match.MismatchError); ok {
		return nil, hit, me.For(s)
	}
	return entry.Accessor, hit, entry.Err
}

// generate runs the matcher and compiles the accessor inside the middleware.
func (b *Bridge) generate(ctx context.Context, t reflect.Type, s *shape.Shape) (*accessor.Accessor, error) {
	v, err := b.mw.Wrap(func(context.Context, observe.BindMeta) (any, error) {
		binding, err := b.matcher.Match(t, s)
		if err != nil {
			return nil, err
		}
		return accessor.Generate(binding)
	})(ctx, metaOf(t, s))
	if err != nil {
		return nil, err
	}
	return v.(*accessor.Accessor), nil
}

// Project projects obj onto s, returning a *Snapshot for copy shapes and a
// *Proxy for proxy shapes.
func (b *Bridge) Project(ctx context.Context, obj any, s *shape.Shape) (View, error) {
	if s == nil {
		return nil, ErrNilShape
	}
	switch s.Mode() {
	case shape.ModeProxy:
		p, err := b.Proxy(ctx, obj, s)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		snap, err := b.Snapshot(ctx, obj, s)
		if err != nil {
			return nil, err
		}
		return snap, nil
	}
}

// Snapshot copies every member of s out of obj. s must be a copy shape.
func (b *Bridge) Snapshot(ctx context.Context, obj any, s *shape.Shape) (*Snapshot, error) {
	acc, src, err := b.project(ctx, obj, s, shape.ModeCopy)
	if err != nil {
		return nil, err
	}
	values, err := acc.Snapshot(src)
	if err != nil {
		return nil, err
	}
	return &Snapshot{shape: s, values: values}, nil
}

// Proxy returns a live view of obj through s. s must be a proxy shape.
// The proxy does not own obj.
func (b *Bridge) Proxy(ctx context.Context, obj any, s *shape.Shape) (*Proxy, error) {
	acc, src, err := b.project(ctx, obj, s, shape.ModeProxy)
	if err != nil {
		return nil, err
	}
	return newProxy(s, acc, obj, src), nil
}

// project validates the request, binds, and records the projection.
func (b *Bridge) project(ctx context.Context, obj any, s *shape.Shape, mode shape.Mode) (*accessor.Accessor, reflect.Value, error) {
	if s == nil {
		return nil, reflect.Value{}, ErrNilShape
	}
	if s.Mode() != mode {
		return nil, reflect.Value{}, fmt.Errorf("%w: %s is a %s shape, want %s", ErrMode, s.Name(), s.Mode(), mode)
	}
	src, err := sourceOf(obj)
	if err != nil {
		return nil, reflect.Value{}, err
	}

	acc, hit, err := b.bind(ctx, src.Type(), s)
	if b.recordProjections {
		b.metrics.RecordProjection(ctx, metaOf(src.Type(), s), hit, err)
	}
	if err != nil {
		return nil, reflect.Value{}, err
	}
	return acc, src, nil
}

func sourceOf(obj any) (reflect.Value, error) {
	if obj == nil {
		return reflect.Value{}, ErrNilObject
	}
	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return reflect.Value{}, ErrNilObject
	}
	return v, nil
}

func metaOf(t reflect.Type, s *shape.Shape) observe.BindMeta {
	return observe.BindMeta{
		Target:  t.String(),
		Shape:   s.Name(),
		ShapeID: s.ID(),
		Mode:    s.Mode().String(),
	}
}

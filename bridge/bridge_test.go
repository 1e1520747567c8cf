package bridge

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jonwraymond/ducktype/cache"
	"github.com/jonwraymond/ducktype/match"
	"github.com/jonwraymond/ducktype/observe"
	"github.com/jonwraymond/ducktype/shape"
)

// gqlLocation stands in for a third-party error location type.
type gqlLocation struct {
	Line   int
	Column int
}

type stringLineOnly struct {
	Line string
}

type lineOnly struct {
	Line int
}

func locationShape(mode shape.Mode) *shape.Shape {
	return shape.New("ErrorLocation", mode).
		Field("Line", reflect.TypeFor[int]()).
		Field("Column", reflect.TypeFor[int]()).
		MustBuild()
}

func TestSnapshot_LineAndColumn(t *testing.T) {
	b := New()

	snap, err := b.Snapshot(context.Background(), gqlLocation{Line: 3, Column: 17}, locationShape(shape.ModeCopy))
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	line, _ := snap.Get("Line")
	column, _ := snap.Get("Column")
	if line != 3 || column != 17 {
		t.Errorf("got Line=%v Column=%v, want Line=3 Column=17", line, column)
	}
	if got := snap.Names(); !slices.Equal(got, []string{"Line", "Column"}) {
		t.Errorf("Names() = %v, want declaration order", got)
	}
	if got := snap.Values(); !slices.Equal(got, []any{3, 17}) {
		t.Errorf("Values() = %v, want [3 17]", got)
	}
}

func TestSnapshot_TypeIncompatibleReportsAllMembers(t *testing.T) {
	b := New()

	_, err := b.Snapshot(context.Background(), stringLineOnly{Line: "3"}, locationShape(shape.ModeCopy))
	if !errors.Is(err, ErrStructuralMismatch) {
		t.Fatalf("err = %v, want ErrStructuralMismatch", err)
	}

	var me *match.MismatchError
	if !errors.As(err, &me) {
		t.Fatalf("err is %T, want *match.MismatchError", err)
	}
	if got := me.Members(); !slices.Equal(got, []string{"Line", "Column"}) {
		t.Fatalf("Members() = %v, want [Line Column]", got)
	}
	if m, _ := me.Lookup("Line"); m.Reason != match.ReasonType {
		t.Errorf("Line reason = %v, want type", m.Reason)
	}
	if m, _ := me.Lookup("Column"); m.Reason != match.ReasonMissing {
		t.Errorf("Column reason = %v, want missing", m.Reason)
	}
}

func TestBind_MissingMemberIsCached(t *testing.T) {
	b := New()
	s := locationShape(shape.ModeCopy)
	ctx := context.Background()

	_, err1 := b.Snapshot(ctx, lineOnly{Line: 1}, s)
	_, err2 := b.Snapshot(ctx, lineOnly{Line: 2}, s)

	var me *match.MismatchError
	if !errors.As(err1, &me) || !slices.Equal(me.Members(), []string{"Column"}) {
		t.Fatalf("first err = %v, want mismatch naming Column only", err1)
	}
	if err2 != err1 {
		t.Errorf("second call returned a different error value; want the cached one")
	}

	stats := b.Stats()
	if stats.Creations != 1 {
		t.Errorf("Creations = %d, want 1", stats.Creations)
	}
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Hits/Misses = %d/%d, want 1/1", stats.Hits, stats.Misses)
	}
}

type columnOnly struct {
	Column int
}

func TestBind_SharedMismatchNamesCallerMembers(t *testing.T) {
	b := New()
	ctx := context.Background()
	byLine := shape.New("ByLine", shape.ModeCopy).Field("Line", reflect.TypeFor[int]()).MustBuild()
	byRow := shape.New("ByRow", shape.ModeCopy).FieldAs("Row", "Line", reflect.TypeFor[int]()).MustBuild()
	if byLine.ID() != byRow.ID() {
		t.Fatalf("shapes should share identity")
	}

	_, err := b.Snapshot(ctx, columnOnly{}, byLine)
	var me *match.MismatchError
	if !errors.As(err, &me) || !slices.Equal(me.Members(), []string{"Line"}) {
		t.Fatalf("first err = %v, want mismatch naming Line", err)
	}

	_, err = b.Snapshot(ctx, columnOnly{}, byRow)
	if !errors.As(err, &me) {
		t.Fatalf("second err = %v, want *match.MismatchError", err)
	}
	if me.Shape != "ByRow" {
		t.Errorf("Shape = %q, want ByRow", me.Shape)
	}
	m, ok := me.Lookup("Row")
	if !ok {
		t.Fatalf("Lookup(Row) found nothing in %v", me.Members())
	}
	if m.Target != "Line" || m.Reason != match.ReasonMissing {
		t.Errorf("Row mismatch = %+v, want missing target Line", m)
	}
	if got := b.Stats().Creations; got != 1 {
		t.Errorf("Creations = %d, want 1", got)
	}

	// The cached report keeps the first caller's names.
	_, err = b.Snapshot(ctx, columnOnly{}, byLine)
	if !errors.As(err, &me) || me.Shape != "ByLine" || !slices.Equal(me.Members(), []string{"Line"}) {
		t.Errorf("third err = %v, want mismatch for ByLine naming Line", err)
	}
}

func TestBind_SecondCallIsCacheHit(t *testing.T) {
	b := New()
	s := locationShape(shape.ModeCopy)
	typ := reflect.TypeFor[gqlLocation]()

	first, err := b.Bind(context.Background(), typ, s)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	second, err := b.Bind(context.Background(), typ, s)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if first != second {
		t.Error("second Bind returned a different accessor")
	}
	if got := b.Stats().Creations; got != 1 {
		t.Errorf("Creations = %d, want 1", got)
	}
}

func TestBind_ConcurrentFirstUseConverges(t *testing.T) {
	b := New()
	s := locationShape(shape.ModeCopy)
	typ := reflect.TypeFor[gqlLocation]()

	const n = 64
	var wg sync.WaitGroup
	results := make([]any, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc, err := b.Bind(context.Background(), typ, s)
			if err != nil {
				t.Errorf("Bind() error = %v", err)
			}
			results[i] = acc
		}()
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Fatalf("caller %d observed a different accessor", i)
		}
	}
	if got := b.Stats().Creations; got != 1 {
		t.Errorf("Creations = %d, want 1", got)
	}
}

func TestBind_CopyAndProxyShareBinding(t *testing.T) {
	b := New()
	ctx := context.Background()
	src := &gqlLocation{Line: 1, Column: 2}

	if _, err := b.Snapshot(ctx, src, locationShape(shape.ModeCopy)); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if _, err := b.Proxy(ctx, src, locationShape(shape.ModeProxy)); err != nil {
		t.Fatalf("Proxy() error = %v", err)
	}
	if got := b.Stats().Creations; got != 1 {
		t.Errorf("Creations = %d, want 1", got)
	}
}

func TestBind_DistinctTypesDistinctEntries(t *testing.T) {
	b := New()
	s := locationShape(shape.ModeCopy)
	ctx := context.Background()

	_, _ = b.Snapshot(ctx, gqlLocation{}, s)
	_, _ = b.Snapshot(ctx, &gqlLocation{}, s)
	_, _ = b.Snapshot(ctx, lineOnly{}, s)

	if got := len(b.Entries()); got != 3 {
		t.Errorf("len(Entries()) = %d, want 3", got)
	}
}

func TestProject_DispatchesOnMode(t *testing.T) {
	b := New()
	ctx := context.Background()
	src := &gqlLocation{Line: 3, Column: 17}

	v, err := b.Project(ctx, src, locationShape(shape.ModeCopy))
	if err != nil {
		t.Fatalf("Project(copy) error = %v", err)
	}
	if _, ok := v.(*Snapshot); !ok {
		t.Errorf("Project(copy) = %T, want *Snapshot", v)
	}

	v, err = b.Project(ctx, src, locationShape(shape.ModeProxy))
	if err != nil {
		t.Fatalf("Project(proxy) error = %v", err)
	}
	if _, ok := v.(*Proxy); !ok {
		t.Errorf("Project(proxy) = %T, want *Proxy", v)
	}

	v, err = b.Project(ctx, lineOnly{}, locationShape(shape.ModeCopy))
	if err == nil || v != nil {
		t.Errorf("Project(mismatch) = %v, %v; want nil view and error", v, err)
	}
}

func TestProject_InputErrors(t *testing.T) {
	b := New()
	ctx := context.Background()
	copyShape := locationShape(shape.ModeCopy)

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"nil object", func() error { _, err := b.Snapshot(ctx, nil, copyShape); return err }, ErrNilObject},
		{"nil pointer", func() error { _, err := b.Snapshot(ctx, (*gqlLocation)(nil), copyShape); return err }, ErrNilObject},
		{"nil shape", func() error { _, err := b.Project(ctx, gqlLocation{}, nil); return err }, ErrNilShape},
		{"proxy shape as snapshot", func() error {
			_, err := b.Snapshot(ctx, gqlLocation{}, locationShape(shape.ModeProxy))
			return err
		}, ErrMode},
		{"copy shape as proxy", func() error { _, err := b.Proxy(ctx, &gqlLocation{}, copyShape); return err }, ErrMode},
		{"nil type", func() error { _, err := b.Bind(ctx, nil, copyShape); return err }, ErrNilObject},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestBridge_WithPolicyDisablesMismatchCaching(t *testing.T) {
	b := New(WithPolicy(cache.Policy{CacheMismatches: false}))
	s := locationShape(shape.ModeCopy)
	ctx := context.Background()

	_, _ = b.Snapshot(ctx, lineOnly{}, s)
	_, _ = b.Snapshot(ctx, lineOnly{}, s)

	if got := b.Stats().Creations; got != 2 {
		t.Errorf("Creations = %d, want 2", got)
	}
}

func TestBridge_WithCacheShared(t *testing.T) {
	shared := cache.NewMemoryCache(cache.DefaultPolicy())
	a := New(WithCache(shared))
	b := New(WithCache(shared))
	s := locationShape(shape.ModeCopy)

	_, _ = a.Snapshot(context.Background(), gqlLocation{}, s)
	_, _ = b.Snapshot(context.Background(), gqlLocation{}, s)

	if got := shared.Stats().Creations; got != 1 {
		t.Errorf("Creations = %d, want 1", got)
	}
}

func TestBridge_TracesOnlyCacheMisses(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	mw := observe.NewMiddleware(observe.NewTracer(tp.Tracer("test")), nil, nil)

	b := New(WithMiddleware(mw))
	s := locationShape(shape.ModeCopy)
	for range 3 {
		_, _ = b.Snapshot(context.Background(), gqlLocation{}, s)
	}
	_, _ = b.Snapshot(context.Background(), lineOnly{}, s)

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	for _, sp := range spans {
		if sp.Name() != "ducktype.bind.ErrorLocation" {
			t.Errorf("span name = %q", sp.Name())
		}
	}
}

func TestBridge_WithObserver(t *testing.T) {
	ctx := context.Background()
	obs, err := observe.NewObserver(ctx, observe.Config{ServiceName: "ducktype-test"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer func() { _ = obs.Shutdown(ctx) }()

	b := New(WithObserver(obs))
	if _, err := b.Snapshot(ctx, gqlLocation{Line: 1}, locationShape(shape.ModeCopy)); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
}

type countingMetrics struct {
	projections atomic.Int64
	hits        atomic.Int64
}

func (m *countingMetrics) RecordBind(context.Context, observe.BindMeta, time.Duration, error) {}

func (m *countingMetrics) RecordProjection(_ context.Context, _ observe.BindMeta, hit bool, _ error) {
	m.projections.Add(1)
	if hit {
		m.hits.Add(1)
	}
}

func TestBridge_RecordsProjectionsOnlyWithMetrics(t *testing.T) {
	if New().recordProjections {
		t.Error("bridge without metrics should skip projection recording")
	}

	metrics := &countingMetrics{}
	b := New(WithMiddleware(observe.NewMiddleware(nil, metrics, nil)))
	if !b.recordProjections {
		t.Fatal("bridge with metrics should record projections")
	}
	s := locationShape(shape.ModeCopy)
	for range 3 {
		_, _ = b.Snapshot(context.Background(), gqlLocation{}, s)
	}
	if got := metrics.projections.Load(); got != 3 {
		t.Errorf("projections = %d, want 3", got)
	}
	if got := metrics.hits.Load(); got != 2 {
		t.Errorf("hits = %d, want 2", got)
	}
}

func TestDefault_IsSingleton(t *testing.T) {
	if Default() != Default() {
		t.Error("Default() returned different bridges")
	}
}

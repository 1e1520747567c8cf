package bridge

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/jonwraymond/ducktype/shape"
)

// liveLocation is a mutable source whose getters read current state.
type liveLocation struct {
	line, column int
	disposed     atomic.Bool
}

func (l *liveLocation) Line() int      { return l.line }
func (l *liveLocation) Column() int    { return l.column }
func (l *liveLocation) Disposed() bool { return l.disposed.Load() }

// fragileLocation panics once its backing handle is gone.
type fragileLocation struct {
	handle *int
}

func (f fragileLocation) Line() int   { return *f.handle }
func (f fragileLocation) Column() int { return 0 }

type counter struct {
	n int
}

func (c *counter) Add(delta int) int {
	c.n += delta
	return c.n
}

func (c *counter) Label(prefix string) string { return prefix + "counter" }

func (c *counter) Sum(base int, more ...int) int64 {
	total := int64(base)
	for _, m := range more {
		total += int64(m)
	}
	return total
}

func TestSnapshot_IndependentOfSourceMutation(t *testing.T) {
	b := New()
	src := &gqlLocation{Line: 3, Column: 17}

	snap, err := b.Snapshot(context.Background(), src, locationShape(shape.ModeCopy))
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	src.Line, src.Column = 99, 100

	if got := snap.Values(); !slices.Equal(got, []any{3, 17}) {
		t.Errorf("Values() = %v after mutation, want [3 17]", got)
	}
}

func TestSnapshot_ValuesReturnsCopy(t *testing.T) {
	snap, err := New().Snapshot(context.Background(), gqlLocation{Line: 1, Column: 2}, locationShape(shape.ModeCopy))
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	values := snap.Values()
	values[0] = "changed"

	if v, _ := snap.Index(0); v != 1 {
		t.Errorf("Index(0) = %v, want 1", v)
	}
}

func TestSnapshot_UnknownMember(t *testing.T) {
	snap, err := New().Snapshot(context.Background(), gqlLocation{}, locationShape(shape.ModeCopy))
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if _, err := snap.Get("File"); !errors.Is(err, ErrUnknownMember) {
		t.Errorf("Get(File) err = %v, want ErrUnknownMember", err)
	}
	if _, err := snap.Index(2); !errors.Is(err, ErrUnknownMember) {
		t.Errorf("Index(2) err = %v, want ErrUnknownMember", err)
	}
	if m := snap.Map(); m["Line"] != 0 || m["Column"] != 0 || len(m) != 2 {
		t.Errorf("Map() = %v", m)
	}
}

func TestSnapshot_WideningConversionAppliedOnce(t *testing.T) {
	type narrow struct {
		Line   int16
		Column uint8
	}
	s := shape.New("Wide", shape.ModeCopy).
		Field("Line", reflect.TypeFor[int64]()).
		Field("Column", reflect.TypeFor[int]()).
		MustBuild()

	snap, err := New().Snapshot(context.Background(), narrow{Line: 3, Column: 17}, s)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got := snap.Values(); !slices.Equal(got, []any{int64(3), 17}) {
		t.Errorf("Values() = %#v, want declared types", got)
	}
}

func TestProxy_RepeatedReadsAreEqual(t *testing.T) {
	src := &liveLocation{line: 3, column: 17}
	p, err := New().Proxy(context.Background(), src, locationShape(shape.ModeProxy))
	if err != nil {
		t.Fatalf("Proxy() error = %v", err)
	}

	first, err := p.Get("Line")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	second, _ := p.Get("Line")
	if first != second {
		t.Errorf("reads differ: %v vs %v", first, second)
	}
}

func TestProxy_ReadsThroughToSource(t *testing.T) {
	src := &gqlLocation{Line: 3, Column: 17}
	p, err := New().Proxy(context.Background(), src, locationShape(shape.ModeProxy))
	if err != nil {
		t.Fatalf("Proxy() error = %v", err)
	}

	src.Line = 4
	if v, _ := p.Get("Line"); v != 4 {
		t.Errorf("Get(Line) = %v after update, want 4", v)
	}
	if src.Line != 4 || src.Column != 17 {
		t.Errorf("source mutated: %+v", src)
	}
}

func TestProxy_Release(t *testing.T) {
	p, err := New().Proxy(context.Background(), &gqlLocation{Line: 1}, locationShape(shape.ModeProxy))
	if err != nil {
		t.Fatalf("Proxy() error = %v", err)
	}
	if !p.Valid() {
		t.Fatal("new proxy should be valid")
	}

	p.Release()

	if p.Valid() {
		t.Error("released proxy reports valid")
	}
	if _, err := p.Get("Line"); !errors.Is(err, ErrInvalidated) {
		t.Errorf("Get() after Release err = %v, want ErrInvalidated", err)
	}
}

func TestProxy_DisposedSource(t *testing.T) {
	src := &liveLocation{line: 1}
	p, err := New().Proxy(context.Background(), src, locationShape(shape.ModeProxy))
	if err != nil {
		t.Fatalf("Proxy() error = %v", err)
	}

	src.disposed.Store(true)

	if _, err := p.Index(0); !errors.Is(err, ErrInvalidated) {
		t.Errorf("Index() after dispose err = %v, want ErrInvalidated", err)
	}
}

func TestProxy_PanickingSource(t *testing.T) {
	handle := 7
	src := &fragileLocation{handle: &handle}
	p, err := New().Proxy(context.Background(), src, locationShape(shape.ModeProxy))
	if err != nil {
		t.Fatalf("Proxy() error = %v", err)
	}
	if v, _ := p.Get("Line"); v != 7 {
		t.Fatalf("Get(Line) = %v, want 7", v)
	}

	src.handle = nil

	if _, err := p.Get("Line"); !errors.Is(err, ErrInvalidated) {
		t.Errorf("Get() on broken source err = %v, want ErrInvalidated", err)
	}
}

func TestProxy_Call(t *testing.T) {
	s := shape.New("Counter", shape.ModeProxy).
		Method("Add", reflect.TypeFor[func(int) int]()).
		Method("Label", reflect.TypeFor[func(string) string]()).
		Method("Sum", reflect.TypeFor[func(int, ...int) int64]()).
		MustBuild()
	src := &counter{}

	p, err := New().Proxy(context.Background(), src, s)
	if err != nil {
		t.Fatalf("Proxy() error = %v", err)
	}

	out, err := p.Call("Add", 5)
	if err != nil {
		t.Fatalf("Call(Add) error = %v", err)
	}
	if out[0] != 5 || src.n != 5 {
		t.Errorf("Add result = %v, counter = %d", out, src.n)
	}

	out, err = p.Call("Label", "my-")
	if err != nil || out[0] != "my-counter" {
		t.Errorf("Call(Label) = %v, %v", out, err)
	}

	out, err = p.Call("Sum", 1, []int{2, 3})
	if err != nil || out[0] != int64(6) {
		t.Errorf("Call(Sum) = %v, %v", out, err)
	}

	if _, err := p.Call("Missing"); !errors.Is(err, ErrUnknownMember) {
		t.Errorf("Call(Missing) err = %v, want ErrUnknownMember", err)
	}

	p.Release()
	if _, err := p.Call("Add", 1); !errors.Is(err, ErrInvalidated) {
		t.Errorf("Call() after Release err = %v, want ErrInvalidated", err)
	}
}

func TestProxy_Source(t *testing.T) {
	src := &gqlLocation{}
	p, err := New().Proxy(context.Background(), src, locationShape(shape.ModeProxy))
	if err != nil {
		t.Fatalf("Proxy() error = %v", err)
	}
	if p.Source() != src {
		t.Error("Source() does not return the projected object")
	}
}

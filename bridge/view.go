package bridge

import (
	"fmt"
	"reflect"
	"slices"
	"sync/atomic"

	"github.com/jonwraymond/ducktype/accessor"
	"github.com/jonwraymond/ducktype/shape"
)

// View is a projection of one object onto a shape.
//
// Contract:
// - Ordering: Index(i) addresses the i'th member in declaration order.
// - Types: values carry the member's declared type.
// - Ownership: views never mutate the source.
type View interface {
	// Shape returns the shape the view was projected onto.
	Shape() *shape.Shape

	// Get returns the member with the given declared name.
	Get(name string) (any, error)

	// Index returns the i'th member.
	Index(i int) (any, error)
}

// Disposer is implemented by sources that can tell when they are no longer
// usable.
type Disposer interface {
	Disposed() bool
}

// Snapshot holds member values copied at projection time.
//
// Values are copied the way Go assignment copies them: a member of slice,
// map or pointer type still refers to the source's backing data.
type Snapshot struct {
	shape  *shape.Shape
	values []any
}

// Shape returns the projected shape.
func (s *Snapshot) Shape() *shape.Shape { return s.shape }

// Len returns the number of members.
func (s *Snapshot) Len() int { return len(s.values) }

// Get returns the member with the given declared name.
func (s *Snapshot) Get(name string) (any, error) {
	i, ok := s.shape.Index(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no member %q", ErrUnknownMember, s.shape.Name(), name)
	}
	return s.values[i], nil
}

// Index returns the i'th member.
func (s *Snapshot) Index(i int) (any, error) {
	if i < 0 || i >= len(s.values) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrUnknownMember, i, len(s.values))
	}
	return s.values[i], nil
}

// Values returns the member values in declaration order.
func (s *Snapshot) Values() []any { return slices.Clone(s.values) }

// Names returns the declared member names in declaration order.
func (s *Snapshot) Names() []string {
	names := make([]string, s.shape.Len())
	for i := range names {
		names[i] = s.shape.Member(i).Name
	}
	return names
}

// Map returns the members keyed by declared name.
func (s *Snapshot) Map() map[string]any {
	m := make(map[string]any, len(s.values))
	for i, v := range s.values {
		m[s.shape.Member(i).Name] = v
	}
	return m
}

// Proxy reads members through to its source on every access.
//
// Contract:
//   - Concurrency: safe for concurrent use if the source is.
//   - Ownership: does not own the source; the code that vended it must keep
//     it alive while the proxy is in use.
//   - Errors: after Release, or once a Disposer source reports Disposed,
//     every access fails with ErrInvalidated. A source that panics while
//     being read also yields ErrInvalidated.
type Proxy struct {
	shape    *shape.Shape
	acc      *accessor.Accessor
	obj      any
	src      reflect.Value
	disposer Disposer
	released atomic.Bool
}

func newProxy(s *shape.Shape, acc *accessor.Accessor, obj any, src reflect.Value) *Proxy {
	p := &Proxy{shape: s, acc: acc, obj: obj, src: src}
	p.disposer, _ = obj.(Disposer)
	return p
}

// Shape returns the projected shape.
func (p *Proxy) Shape() *shape.Shape { return p.shape }

// Source returns the object the proxy reads from.
func (p *Proxy) Source() any { return p.obj }

// Release detaches the proxy. Later accesses fail with ErrInvalidated.
func (p *Proxy) Release() { p.released.Store(true) }

// Valid reports whether the proxy may still be read.
func (p *Proxy) Valid() bool { return p.check() == nil }

func (p *Proxy) check() error {
	if p.released.Load() {
		return fmt.Errorf("%w: %s proxy released", ErrInvalidated, p.shape.Name())
	}
	if p.disposer != nil && p.disposer.Disposed() {
		return fmt.Errorf("%w: %s source disposed", ErrInvalidated, p.shape.Name())
	}
	return nil
}

// Get reads the member with the given declared name.
func (p *Proxy) Get(name string) (any, error) {
	i, ok := p.shape.Index(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no member %q", ErrUnknownMember, p.shape.Name(), name)
	}
	return p.Index(i)
}

// Index reads the i'th member.
func (p *Proxy) Index(i int) (any, error) {
	if i < 0 || i >= p.shape.Len() {
		return nil, fmt.Errorf("%w: index %d of %d", ErrUnknownMember, i, p.shape.Len())
	}
	if err := p.check(); err != nil {
		return nil, err
	}
	v, err := p.acc.Read(p.src, i)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// Call invokes the method-like member with the given declared name.
// Arguments and results use the declared signature.
func (p *Proxy) Call(name string, args ...any) ([]any, error) {
	i, ok := p.shape.Index(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no member %q", ErrUnknownMember, p.shape.Name(), name)
	}
	if err := p.check(); err != nil {
		return nil, err
	}
	return p.acc.Call(p.src, i, args...)
}

var (
	_ View = (*Snapshot)(nil)
	_ View = (*Proxy)(nil)
)

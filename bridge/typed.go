package bridge

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jonwraymond/ducktype/shape"
)

// Copy projects obj onto the copy shape declared by struct T and returns the
// filled struct.
func Copy[T any](ctx context.Context, b *Bridge, obj any) (T, error) {
	var out T
	s, err := shape.Of[T]()
	if err != nil {
		return out, err
	}
	acc, src, err := b.project(ctx, obj, s, shape.ModeCopy)
	if err != nil {
		return out, err
	}
	if err := acc.Fill(src, reflect.ValueOf(&out).Elem(), s); err != nil {
		return out, err
	}
	return out, nil
}

// ProxyAs projects obj onto the proxy shape declared by struct T. Every
// shape.Getter field of the returned struct reads through the returned
// Proxy, which controls its lifetime.
func ProxyAs[T any](ctx context.Context, b *Bridge, obj any) (T, *Proxy, error) {
	var out T
	s, err := shape.Of[T]()
	if err != nil {
		return out, nil, err
	}
	p, err := b.Proxy(ctx, obj, s)
	if err != nil {
		return out, nil, err
	}

	dst := reflect.ValueOf(&out).Elem()
	for i := range s.Len() {
		field := dst.FieldByIndex(s.Member(i).Field)
		live, ok := reflect.Zero(field.Type()).Interface().(shape.LiveField)
		if !ok {
			return out, nil, fmt.Errorf("%w: %s.%s is not a live field", ErrMode, s.Name(), s.Member(i).Name)
		}
		field.Set(reflect.ValueOf(live.BindReader(func() (any, error) {
			return p.Index(i)
		})))
	}
	return out, p, nil
}

// Read reads a member of p as V. V must be the member's declared type.
func Read[V any](p *Proxy, name string) (V, error) {
	var zero V
	v, err := p.Get(name)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(V)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T", ErrMemberType, name, v)
	}
	return out, nil
}

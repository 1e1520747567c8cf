package shape

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// TagName is the struct tag key read during derivation.
const TagName = "duck"

// DuckCopy marks a struct declaration as a copy shape when embedded.
type DuckCopy struct{}

// DuckProxy marks a struct declaration as a proxy shape when embedded.
type DuckProxy struct{}

var (
	duckCopyType  = reflect.TypeFor[DuckCopy]()
	duckProxyType = reflect.TypeFor[DuckProxy]()
	liveFieldType = reflect.TypeFor[LiveField]()
)

// LiveField is implemented by field types that stand for a lazily read member
// in a proxy declaration. Getter is the only implementation.
type LiveField interface {
	// ValueType returns the declared member type.
	ValueType() reflect.Type

	// BindReader returns a value of the implementing type that reads
	// through read on every call.
	BindReader(read func() (any, error)) any
}

// Getter is a lazily read field-like member of a proxy declaration.
type Getter[V any] func() (V, error)

// ValueType implements LiveField.
func (Getter[V]) ValueType() reflect.Type { return reflect.TypeFor[V]() }

// BindReader implements LiveField.
func (Getter[V]) BindReader(read func() (any, error)) any {
	return Getter[V](func() (V, error) {
		v, err := read()
		if err != nil {
			var zero V
			return zero, err
		}
		out, _ := v.(V)
		return out, nil
	})
}

var derived sync.Map // map[reflect.Type]derivedEntry

type derivedEntry struct {
	shape *Shape
	err   error
}

// Of derives the shape declared by struct type T.
func Of[T any]() (*Shape, error) {
	return FromType(reflect.TypeFor[T]())
}

// MustOf is like Of but panics on an invalid declaration.
func MustOf[T any]() *Shape {
	s, err := Of[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// FromType derives a shape from a struct declaration. Results are cached per
// type for the life of the process.
//
// Exported fields become members in field order. Embedding DuckProxy selects
// ModeProxy; otherwise the shape is ModeCopy. The duck tag renames the target
// member (`duck:"Name"`) or skips the field (`duck:"-"`). In proxy
// declarations Getter[V] fields declare members of type V.
func FromType(t reflect.Type) (*Shape, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v", ErrNotStruct, t)
	}
	if e, ok := derived.Load(t); ok {
		de := e.(derivedEntry)
		return de.shape, de.err
	}

	s, err := derive(t)
	e, _ := derived.LoadOrStore(t, derivedEntry{shape: s, err: err})
	de := e.(derivedEntry)
	return de.shape, de.err
}

func derive(t reflect.Type) (*Shape, error) {
	mode, err := declaredMode(t)
	if err != nil {
		return nil, err
	}

	b := New(t.Name(), mode)
	b.decl = t
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Type == duckCopyType || f.Type == duckProxyType {
			continue
		}
		if !f.IsExported() {
			continue
		}

		target := f.Name
		if tag, ok := f.Tag.Lookup(TagName); ok {
			tag = strings.TrimSpace(tag)
			if tag == "-" {
				continue
			}
			if tag != "" {
				target = tag
			}
		}

		typ, err := memberType(mode, f)
		if err != nil {
			return nil, err
		}
		b.add(Member{
			Name:   f.Name,
			Target: target,
			Kind:   KindField,
			Type:   typ,
			Field:  f.Index,
		})
	}
	return b.Build()
}

func declaredMode(t reflect.Type) (Mode, error) {
	var hasCopy, hasProxy bool
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		switch f.Type {
		case duckCopyType:
			hasCopy = true
		case duckProxyType:
			hasProxy = true
		}
	}
	if hasCopy && hasProxy {
		return 0, fmt.Errorf("%w: %s", ErrConflictingMarkers, t)
	}
	if hasProxy {
		return ModeProxy, nil
	}
	return ModeCopy, nil
}

func memberType(mode Mode, f reflect.StructField) (reflect.Type, error) {
	live := f.Type.Implements(liveFieldType)
	switch {
	case mode == ModeProxy && live:
		return reflect.Zero(f.Type).Interface().(LiveField).ValueType(), nil
	case mode == ModeProxy:
		return nil, fmt.Errorf("%w: %s must be a shape.Getter in a proxy declaration", ErrUnsupportedField, f.Name)
	case live:
		return nil, fmt.Errorf("%w: %s is a shape.Getter in a copy declaration", ErrUnsupportedField, f.Name)
	case f.Type.Kind() == reflect.Func:
		return nil, fmt.Errorf("%w: %s has func type", ErrUnsupportedField, f.Name)
	default:
		return f.Type, nil
	}
}

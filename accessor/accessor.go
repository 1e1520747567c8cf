package accessor

import (
	"fmt"
	"reflect"

	"github.com/jonwraymond/ducktype/match"
	"github.com/jonwraymond/ducktype/shape"
)

type reader func(src reflect.Value) (reflect.Value, error)

type invoker func(src reflect.Value, args []any) ([]any, error)

// Accessor reads the members of a shape from instances of one target type.
//
// Contract:
// - Concurrency: safe for concurrent use; an Accessor is immutable.
// - Ownership: never mutates the source object.
// - Errors: instance-level failures only; structural failures were decided by match.
type Accessor struct {
	binding  *match.Binding
	readers  []reader
	invokers []invoker
}

// Generate compiles b into an Accessor.
func Generate(b *match.Binding) (*Accessor, error) {
	if b == nil {
		return nil, ErrNilBinding
	}

	a := &Accessor{
		binding:  b,
		readers:  make([]reader, len(b.Members)),
		invokers: make([]invoker, len(b.Members)),
	}
	viaPtr := b.ViaPointer()
	for i, mb := range b.Members {
		switch mb.Access {
		case match.AccessField:
			a.readers[i] = fieldReader(mb, viaPtr)
		case match.AccessGetter:
			a.readers[i] = getterReader(mb)
		case match.AccessMethod:
			a.invokers[i] = methodInvoker(mb)
		default:
			return nil, fmt.Errorf("accessor: unknown access kind %d for %s", mb.Access, mb.Member.Name)
		}
	}
	return a, nil
}

// Binding returns the binding the accessor was generated from.
func (a *Accessor) Binding() *match.Binding { return a.binding }

// Shape returns the bound shape.
func (a *Accessor) Shape() *shape.Shape { return a.binding.Shape }

// Target returns the bound runtime type.
func (a *Accessor) Target() reflect.Type { return a.binding.Target }

// Len returns the number of members.
func (a *Accessor) Len() int { return len(a.binding.Members) }

// Check verifies src is a usable instance of the bound type.
func (a *Accessor) Check(src reflect.Value) error {
	if !src.IsValid() {
		return ErrNilSource
	}
	if src.Type() != a.binding.Target {
		return fmt.Errorf("%w: bound to %s, got %s", ErrTypeMismatch, a.binding.Target, src.Type())
	}
	switch src.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if src.IsNil() {
			return ErrNilSource
		}
	}
	return nil
}

// Read returns the current value of the i'th member, converted to its
// declared type.
func (a *Accessor) Read(src reflect.Value, i int) (reflect.Value, error) {
	if i < 0 || i >= len(a.readers) {
		return reflect.Value{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	if a.readers[i] == nil {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrNotReadable, a.binding.Members[i].Member.Name)
	}
	if err := a.Check(src); err != nil {
		return reflect.Value{}, err
	}
	return a.readers[i](src)
}

// Snapshot reads every member once, in declaration order.
func (a *Accessor) Snapshot(src reflect.Value) ([]any, error) {
	if err := a.Check(src); err != nil {
		return nil, err
	}
	values := make([]any, len(a.readers))
	for i, read := range a.readers {
		if read == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotReadable, a.binding.Members[i].Member.Name)
		}
		v, err := read(src)
		if err != nil {
			return nil, err
		}
		values[i] = v.Interface()
	}
	return values, nil
}

// Fill reads every member once and stores it into the struct declaration of
// decl. decl must have the bound shape's identity; it is passed explicitly
// because one accessor serves every shape sharing that identity. dst must be
// a settable value of the declaration type.
func (a *Accessor) Fill(src, dst reflect.Value, decl *shape.Shape) error {
	if decl == nil {
		decl = a.binding.Shape
	}
	if decl.ID() != a.binding.Shape.ID() {
		return fmt.Errorf("%w: accessor bound to %s, got %s", ErrShapeMismatch, a.binding.Shape.ID(), decl.ID())
	}
	typ := decl.Declaration()
	if typ == nil {
		return ErrNoDeclaration
	}
	if !dst.IsValid() || dst.Type() != typ || !dst.CanSet() {
		return fmt.Errorf("%w: destination must be a settable %v", ErrTypeMismatch, typ)
	}
	if err := a.Check(src); err != nil {
		return err
	}
	for i, read := range a.readers {
		if read == nil {
			return fmt.Errorf("%w: %s", ErrNotReadable, a.binding.Members[i].Member.Name)
		}
		v, err := read(src)
		if err != nil {
			return err
		}
		dst.FieldByIndex(decl.Member(i).Field).Set(v)
	}
	return nil
}

// Call invokes the i'th member with args given in the declared parameter
// types. For variadic members the last argument is the slice of variadic
// values. Results are returned in the declared result types.
func (a *Accessor) Call(src reflect.Value, i int, args ...any) ([]any, error) {
	if i < 0 || i >= len(a.invokers) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	if a.invokers[i] == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotCallable, a.binding.Members[i].Member.Name)
	}
	if err := a.Check(src); err != nil {
		return nil, err
	}
	return a.invokers[i](src, args)
}

func fieldReader(mb match.MemberBinding, viaPtr bool) reader {
	index := mb.Index
	conv := mb.Convert
	name := mb.Member.Name

	// Direct field of a struct value: the common case.
	if len(index) == 1 && !viaPtr {
		fi := index[0]
		return func(src reflect.Value) (reflect.Value, error) {
			v := src.Field(fi)
			if conv != nil {
				v = conv(v)
			}
			return v, nil
		}
	}

	return func(src reflect.Value) (reflect.Value, error) {
		if viaPtr {
			src = src.Elem()
		}
		v, err := src.FieldByIndexErr(index)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %s: %v", ErrNilSource, name, err)
		}
		if conv != nil {
			v = conv(v)
		}
		return v, nil
	}
}

func getterReader(mb match.MemberBinding) reader {
	method := mb.Method
	conv := mb.Convert
	name := mb.Member.Name

	return func(src reflect.Value) (v reflect.Value, err error) {
		defer recoverInvalidated(&err, name)
		v = src.Method(method).Call(nil)[0]
		if conv != nil {
			v = conv(v)
		}
		return v, nil
	}
}

func methodInvoker(mb match.MemberBinding) invoker {
	method := mb.Method
	declared := mb.Member.Type
	params := mb.Params
	results := mb.Results
	name := mb.Member.Name

	return func(src reflect.Value, args []any) (out []any, err error) {
		if len(args) != declared.NumIn() {
			return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrBadArguments, name, declared.NumIn(), len(args))
		}
		in := make([]reflect.Value, len(args))
		for j, arg := range args {
			v, err := argument(declared.In(j), arg)
			if err != nil {
				return nil, fmt.Errorf("%w: %s argument %d: %v", ErrBadArguments, name, j, err)
			}
			if params[j] != nil {
				v = params[j](v)
			}
			in[j] = v
		}

		defer recoverInvalidated(&err, name)
		fn := src.Method(method)
		var res []reflect.Value
		if declared.IsVariadic() {
			res = fn.CallSlice(in)
		} else {
			res = fn.Call(in)
		}

		out = make([]any, len(res))
		for k, r := range res {
			if results[k] != nil {
				r = results[k](r)
			}
			out[k] = r.Interface()
		}
		return out, nil
	}
}

// argument converts a caller-supplied value to the declared parameter type.
func argument(declared reflect.Type, arg any) (reflect.Value, error) {
	if arg == nil {
		switch declared.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(declared), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not a valid %s", declared)
	}
	v := reflect.ValueOf(arg)
	if !v.Type().AssignableTo(declared) {
		return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", v.Type(), declared)
	}
	if v.Type() != declared && declared.Kind() != reflect.Interface {
		v = v.Convert(declared)
	}
	return v, nil
}

func recoverInvalidated(err *error, member string) {
	if r := recover(); r != nil {
		if cause, ok := r.(error); ok {
			*err = fmt.Errorf("%w: %s: %w", ErrInvalidated, member, cause)
			return
		}
		*err = fmt.Errorf("%w: %s: %v", ErrInvalidated, member, r)
	}
}

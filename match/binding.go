package match

import (
	"reflect"

	"github.com/jonwraymond/ducktype/shape"
)

// AccessKind is the mechanism used to read a member from an instance.
type AccessKind int

const (
	// AccessField reads a struct field by index path.
	AccessField AccessKind = iota
	// AccessGetter calls a zero-argument, single-result method.
	AccessGetter
	// AccessMethod calls a method with arguments.
	AccessMethod
)

func (k AccessKind) String() string {
	switch k {
	case AccessField:
		return "field"
	case AccessGetter:
		return "getter"
	case AccessMethod:
		return "method"
	default:
		return "unknown"
	}
}

// MemberBinding is how one declared member is read on the target type.
type MemberBinding struct {
	Member shape.Member
	Access AccessKind

	// Index is the field index path for AccessField. The path is relative to
	// the struct type; when the target is a pointer the pointer is
	// dereferenced first.
	Index []int

	// Method is the index into the target type's method set for
	// AccessGetter and AccessMethod.
	Method int

	// Source is the field type, the getter result type, or the method
	// signature without receiver.
	Source reflect.Type

	// Rule names the compatibility rule that accepted the field or getter type.
	Rule string

	// Convert converts a field or getter value to the declared type.
	Convert Conversion

	// Params converts declared argument values to target parameter types.
	Params []Conversion

	// Results converts target results to declared result types.
	Results []Conversion
}

// Binding is the resolved mapping from a shape onto one target type.
//
// Contract:
// - Immutability: a Binding is never mutated after Match returns it.
// - Order: Members follows the shape's declaration order exactly.
type Binding struct {
	Target  reflect.Type
	Shape   *shape.Shape
	Members []MemberBinding
}

// Len returns the number of member bindings.
func (b *Binding) Len() int { return len(b.Members) }

// ViaPointer reports whether field reads dereference a pointer target.
func (b *Binding) ViaPointer() bool {
	return b.Target.Kind() == reflect.Pointer
}

package accessor

import "errors"

// Sentinel errors for accessor operations.
var (
	// ErrNilBinding indicates Generate was called without a binding.
	ErrNilBinding = errors.New("accessor: binding is nil")

	// ErrNilSource indicates a nil source object, or a nil pointer on the
	// path to a promoted field.
	ErrNilSource = errors.New("accessor: source is nil")

	// ErrTypeMismatch indicates an instance whose type differs from the bound type.
	ErrTypeMismatch = errors.New("accessor: instance type does not match binding")

	// ErrInvalidated indicates the source panicked while being read, which
	// happens when a collaborator has disposed of it.
	ErrInvalidated = errors.New("accessor: source object invalidated")

	// ErrNotReadable indicates a read of a method-like member.
	ErrNotReadable = errors.New("accessor: member is not field-like")

	// ErrNotCallable indicates a call of a field-like member.
	ErrNotCallable = errors.New("accessor: member is not method-like")

	// ErrBadArguments indicates arguments that do not fit the declared signature.
	ErrBadArguments = errors.New("accessor: arguments do not match declared signature")

	// ErrNoDeclaration indicates Fill on a shape without a struct declaration.
	ErrNoDeclaration = errors.New("accessor: shape has no struct declaration")

	// ErrShapeMismatch indicates Fill with a shape of a different identity.
	ErrShapeMismatch = errors.New("accessor: shape identity does not match binding")

	// ErrIndexOutOfRange indicates a member index outside the shape.
	ErrIndexOutOfRange = errors.New("accessor: member index out of range")
)

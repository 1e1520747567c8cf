package shape

import "errors"

// Declaration errors.
var (
	// ErrInvalidMode indicates a projection mode other than "copy" or "proxy".
	ErrInvalidMode = errors.New("shape: invalid projection mode")

	// ErrEmptyShape indicates a shape with no members.
	ErrEmptyShape = errors.New("shape: shape declares no members")

	// ErrEmptyMemberName indicates a member without a name.
	ErrEmptyMemberName = errors.New("shape: member name is required")

	// ErrDuplicateMember indicates two members with the same declared name.
	ErrDuplicateMember = errors.New("shape: duplicate member")

	// ErrNilMemberType indicates a member without a declared type.
	ErrNilMemberType = errors.New("shape: member type is nil")

	// ErrNotFunc indicates a method-like member whose type is not a func type.
	ErrNotFunc = errors.New("shape: method member type must be a func")

	// ErrMethodInCopyShape indicates a method-like member in a copy shape.
	ErrMethodInCopyShape = errors.New("shape: copy shapes cannot declare methods")
)

// Derivation errors.
var (
	// ErrNotStruct indicates derivation from a non-struct type.
	ErrNotStruct = errors.New("shape: declaration must be a struct")

	// ErrConflictingMarkers indicates a struct embedding both DuckCopy and DuckProxy.
	ErrConflictingMarkers = errors.New("shape: both DuckCopy and DuckProxy embedded")

	// ErrUnsupportedField indicates a struct field that cannot be a member.
	ErrUnsupportedField = errors.New("shape: unsupported field")
)

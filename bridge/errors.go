package bridge

import (
	"errors"

	"github.com/jonwraymond/ducktype/accessor"
	"github.com/jonwraymond/ducktype/match"
)

var (
	// ErrNilObject indicates a nil object or a nil pointer was projected.
	ErrNilObject = errors.New("bridge: object is nil")

	// ErrNilShape indicates a projection without a shape.
	ErrNilShape = errors.New("bridge: shape is nil")

	// ErrMode indicates a shape whose mode does not fit the requested view.
	ErrMode = errors.New("bridge: shape mode does not match view")

	// ErrUnknownMember indicates a member name or index outside the shape.
	ErrUnknownMember = errors.New("bridge: unknown member")

	// ErrMemberType indicates a typed read whose type differs from the
	// member's declared type.
	ErrMemberType = errors.New("bridge: member has a different declared type")
)

// Errors surfaced unchanged from lower layers, re-exported so callers need
// only this package.
var (
	// ErrStructuralMismatch matches every *match.MismatchError.
	ErrStructuralMismatch = match.ErrStructuralMismatch

	// ErrInvalidated indicates a proxy read after its source became unusable.
	ErrInvalidated = accessor.ErrInvalidated
)

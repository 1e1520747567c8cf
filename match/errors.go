package match

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/jonwraymond/ducktype/shape"
)

// Sentinel errors for matching.
var (
	// ErrStructuralMismatch is matched by every *MismatchError.
	ErrStructuralMismatch = errors.New("match: structural mismatch")

	// ErrNilTarget indicates a nil target type.
	ErrNilTarget = errors.New("match: target type is nil")

	// ErrNilShape indicates a nil shape.
	ErrNilShape = errors.New("match: shape is nil")
)

// Reason classifies why a member failed to bind.
type Reason int

const (
	// ReasonMissing means the target has no member with the declared name.
	ReasonMissing Reason = iota
	// ReasonType means the member exists but its type is incompatible.
	ReasonType
	// ReasonArity means the member exists with a different parameter or result count.
	ReasonArity
	// ReasonKind means a field was declared where the target has only a
	// method, or the other way around.
	ReasonKind
	// ReasonUnexported means the target field exists but is not exported.
	ReasonUnexported
	// ReasonPointerReceiver means the method exists only on the pointer type.
	ReasonPointerReceiver
)

func (r Reason) String() string {
	switch r {
	case ReasonMissing:
		return "missing"
	case ReasonType:
		return "type mismatch"
	case ReasonArity:
		return "arity mismatch"
	case ReasonKind:
		return "kind mismatch"
	case ReasonUnexported:
		return "unexported"
	case ReasonPointerReceiver:
		return "pointer receiver"
	default:
		return "unknown"
	}
}

// Mismatch describes one member that failed to bind.
type Mismatch struct {
	Index  int          // Declaration index of the member in the shape
	Member string       // Declared member name
	Target string       // Name looked up on the target
	Reason Reason       // Why binding failed
	Want   reflect.Type // Declared type (may be nil)
	Got    reflect.Type // Type found on the target (nil when missing)
	Detail string       // Optional extra context, e.g. "parameter 1"
}

func (m Mismatch) String() string {
	var b strings.Builder
	b.WriteString(m.Member)
	if m.Target != "" && m.Target != m.Member {
		b.WriteString(" (" + m.Target + ")")
	}
	b.WriteString(": " + m.Reason.String())
	if m.Detail != "" {
		b.WriteString(" " + m.Detail)
	}
	if m.Want != nil && m.Got != nil {
		fmt.Fprintf(&b, " (want %s, got %s)", m.Want, m.Got)
	}
	return b.String()
}

// MismatchError reports every member of a shape that a target type failed to
// satisfy, in shape declaration order.
type MismatchError struct {
	Target     reflect.Type
	Shape      string
	ShapeID    string
	Mismatches []Mismatch
}

func (e *MismatchError) Error() string {
	parts := make([]string, len(e.Mismatches))
	for i, m := range e.Mismatches {
		parts[i] = m.String()
	}
	return fmt.Sprintf("match: %s does not satisfy %s: %s", e.Target, e.Shape, strings.Join(parts, "; "))
}

// Is reports whether target is ErrStructuralMismatch.
func (e *MismatchError) Is(target error) bool {
	return target == ErrStructuralMismatch
}

// Members returns the declared names of the failing members.
func (e *MismatchError) Members() []string {
	names := make([]string, len(e.Mismatches))
	for i, m := range e.Mismatches {
		names[i] = m.Member
	}
	return names
}

// Lookup returns the mismatch for a declared member name.
func (e *MismatchError) Lookup(member string) (Mismatch, bool) {
	for _, m := range e.Mismatches {
		if m.Member == member {
			return m, true
		}
	}
	return Mismatch{}, false
}

// For returns e as reported against s. Shapes with one identity can still
// differ in display name and declared member names, so a mismatch cached
// for one of them is relabeled with the names of s. e is returned as is
// when s has a different identity or already carries the same names.
func (e *MismatchError) For(s *shape.Shape) *MismatchError {
	if s == nil || s.ID() != e.ShapeID || e.labeledFor(s) {
		return e
	}
	out := &MismatchError{
		Target:     e.Target,
		Shape:      s.Name(),
		ShapeID:    e.ShapeID,
		Mismatches: make([]Mismatch, len(e.Mismatches)),
	}
	for i, m := range e.Mismatches {
		if m.Index >= 0 && m.Index < s.Len() {
			m.Member = s.Member(m.Index).Name
		}
		out.Mismatches[i] = m
	}
	return out
}

func (e *MismatchError) labeledFor(s *shape.Shape) bool {
	if e.Shape != s.Name() {
		return false
	}
	for _, m := range e.Mismatches {
		if m.Index >= 0 && m.Index < s.Len() && s.Member(m.Index).Name != m.Member {
			return false
		}
	}
	return true
}

package shape

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Mode selects how a projection exposes the source object.
type Mode int

const (
	// ModeCopy reads every member once and stores the values.
	ModeCopy Mode = iota
	// ModeProxy reads through to the source object on each access.
	ModeProxy
)

// String returns the annotation name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeCopy:
		return "copy"
	case ModeProxy:
		return "proxy"
	default:
		return "unknown"
	}
}

// ParseMode parses "copy" or "proxy". Matching is exact.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "copy":
		return ModeCopy, nil
	case "proxy":
		return ModeProxy, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// MemberKind distinguishes field-like from method-like members.
type MemberKind int

const (
	// KindField is read without arguments.
	KindField MemberKind = iota
	// KindMethod is invoked with arguments.
	KindMethod
)

func (k MemberKind) String() string {
	if k == KindMethod {
		return "method"
	}
	return "field"
}

// Member is one declared member of a shape.
type Member struct {
	// Name is the declared name, used by views.
	Name string

	// Target is the member name looked up on the target type.
	// Defaults to Name.
	Target string

	// Kind is field-like or method-like.
	Kind MemberKind

	// Type is the value type for field-like members and the func type
	// (without receiver) for method-like members.
	Type reflect.Type

	// Field is the index path of the declaring struct field, or nil when
	// the shape was built without a struct declaration.
	Field []int
}

// String renders the member for diagnostics.
func (m Member) String() string {
	name := m.Name
	if m.Target != m.Name {
		name += "(" + m.Target + ")"
	}
	return name + " " + m.Kind.String() + " " + typeString(m.Type)
}

// Shape is an immutable, ordered set of declared members.
//
// Contract:
// - Immutability: a built Shape is never mutated and is safe for concurrent use.
// - Identity: ID depends only on the ordered members, not on Name or Mode.
type Shape struct {
	name    string
	mode    Mode
	members []Member
	index   map[string]int
	id      string
	decl    reflect.Type
}

// Name returns the display name of the shape.
func (s *Shape) Name() string { return s.name }

// Mode returns the projection mode.
func (s *Shape) Mode() Mode { return s.mode }

// Len returns the number of members.
func (s *Shape) Len() int { return len(s.members) }

// Member returns the i'th member in declaration order.
func (s *Shape) Member(i int) Member { return s.members[i] }

// Members returns a copy of the members in declaration order.
func (s *Shape) Members() []Member {
	out := make([]Member, len(s.members))
	copy(out, s.members)
	return out
}

// Index returns the position of the member with the given declared name.
func (s *Shape) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// ID returns the structural identity of the shape.
// Format: shape:<hash> where hash is the first 16 hex characters of
// SHA-256 over the ordered member tuples.
func (s *Shape) ID() string { return s.id }

// Declaration returns the struct type the shape was derived from, or nil.
func (s *Shape) Declaration() reflect.Type { return s.decl }

// String renders the shape for diagnostics.
func (s *Shape) String() string {
	parts := make([]string, len(s.members))
	for i, m := range s.members {
		parts[i] = m.String()
	}
	return s.name + "{" + strings.Join(parts, "; ") + "}"
}

func fingerprint(members []Member) string {
	var b strings.Builder
	for i, m := range members {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.Target)
		b.WriteByte('|')
		b.WriteString(m.Kind.String())
		b.WriteByte('|')
		b.WriteString(typeString(m.Type))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return "shape:" + hex.EncodeToString(sum[:8])
}

// typeString renders a type with full package paths so that distinct named
// types never share a rendering.
func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Name() != "" {
		if t.PkgPath() == "" {
			return t.Name()
		}
		return t.PkgPath() + "." + t.Name()
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + typeString(t.Elem())
	case reflect.Slice:
		return "[]" + typeString(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + typeString(t.Elem())
	case reflect.Map:
		return "map[" + typeString(t.Key()) + "]" + typeString(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + typeString(t.Elem())
		case reflect.SendDir:
			return "chan<- " + typeString(t.Elem())
		default:
			return "chan " + typeString(t.Elem())
		}
	case reflect.Func:
		return "func" + signatureString(t)
	case reflect.Struct:
		var b strings.Builder
		b.WriteString("struct{")
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if i > 0 {
				b.WriteString("; ")
			}
			if f.Anonymous {
				b.WriteString("embed ")
			}
			b.WriteString(f.PkgPath + "." + f.Name + " " + typeString(f.Type))
			if f.Tag != "" {
				b.WriteString(" " + strconv.Quote(string(f.Tag)))
			}
		}
		b.WriteString("}")
		return b.String()
	case reflect.Interface:
		var b strings.Builder
		b.WriteString("interface{")
		for i := 0; i < t.NumMethod(); i++ {
			m := t.Method(i)
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(m.PkgPath + "." + m.Name + signatureString(m.Type))
		}
		b.WriteString("}")
		return b.String()
	default:
		return t.String()
	}
}

func signatureString(t reflect.Type) string {
	var b strings.Builder
	b.WriteByte('(')
	for i := 0; i < t.NumIn(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		if t.IsVariadic() && i == t.NumIn()-1 {
			b.WriteString("..." + typeString(t.In(i).Elem()))
			continue
		}
		b.WriteString(typeString(t.In(i)))
	}
	b.WriteString(") (")
	for i := 0; i < t.NumOut(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(typeString(t.Out(i)))
	}
	b.WriteByte(')')
	return b.String()
}

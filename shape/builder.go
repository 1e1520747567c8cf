package shape

import (
	"fmt"
	"reflect"
)

// Builder accumulates member declarations for a Shape. Methods chain;
// declarations are validated by Build.
type Builder struct {
	name    string
	mode    Mode
	members []Member
	decl    reflect.Type
}

// New starts a shape declaration with a display name and projection mode.
func New(name string, mode Mode) *Builder {
	return &Builder{name: name, mode: mode}
}

// Field declares a field-like member read from the same-named target member.
func (b *Builder) Field(name string, typ reflect.Type) *Builder {
	return b.FieldAs(name, name, typ)
}

// FieldAs declares a field-like member read from a differently named target member.
func (b *Builder) FieldAs(name, target string, typ reflect.Type) *Builder {
	return b.add(Member{Name: name, Target: target, Kind: KindField, Type: typ})
}

// Method declares a method-like member. fn must be a func type without receiver.
func (b *Builder) Method(name string, fn reflect.Type) *Builder {
	return b.MethodAs(name, name, fn)
}

// MethodAs declares a method-like member bound to a differently named target method.
func (b *Builder) MethodAs(name, target string, fn reflect.Type) *Builder {
	return b.add(Member{Name: name, Target: target, Kind: KindMethod, Type: fn})
}

func (b *Builder) add(m Member) *Builder {
	if m.Target == "" {
		m.Target = m.Name
	}
	b.members = append(b.members, m)
	return b
}

// Build validates the declaration and returns the immutable Shape.
func (b *Builder) Build() (*Shape, error) {
	if b.mode != ModeCopy && b.mode != ModeProxy {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(b.mode))
	}
	if len(b.members) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyShape, b.name)
	}

	index := make(map[string]int, len(b.members))
	for i, m := range b.members {
		if err := validateMember(b.mode, m); err != nil {
			return nil, err
		}
		if _, dup := index[m.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMember, m.Name)
		}
		index[m.Name] = i
	}

	members := make([]Member, len(b.members))
	copy(members, b.members)

	return &Shape{
		name:    b.name,
		mode:    b.mode,
		members: members,
		index:   index,
		id:      fingerprint(members),
		decl:    b.decl,
	}, nil
}

// MustBuild is like Build but panics on an invalid declaration.
// Intended for package-level shape variables.
func (b *Builder) MustBuild() *Shape {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

func validateMember(mode Mode, m Member) error {
	if m.Name == "" {
		return ErrEmptyMemberName
	}
	if m.Type == nil {
		return fmt.Errorf("%w: %s", ErrNilMemberType, m.Name)
	}
	if m.Kind == KindMethod {
		if m.Type.Kind() != reflect.Func {
			return fmt.Errorf("%w: %s is %s", ErrNotFunc, m.Name, m.Type)
		}
		if mode == ModeCopy {
			return fmt.Errorf("%w: %s", ErrMethodInCopyShape, m.Name)
		}
	}
	return nil
}

package match

import (
	"fmt"
	"reflect"

	"github.com/jonwraymond/ducktype/shape"
)

// Matcher binds shapes to target types using an ordered rule chain.
//
// Contract:
// - Concurrency: safe for concurrent use; a Matcher holds no mutable state.
// - Errors: structural failures are returned as *MismatchError.
type Matcher struct {
	rules []Rule
}

// New builds a matcher with the given rule chain.
// With no rules, DefaultRules is used.
func New(rules ...Rule) *Matcher {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Matcher{rules: rules}
}

// Match resolves every member of s on target.
//
// All members are examined even after a failure so that the returned
// *MismatchError lists every failing member.
func (m *Matcher) Match(target reflect.Type, s *shape.Shape) (*Binding, error) {
	if target == nil {
		return nil, ErrNilTarget
	}
	if s == nil {
		return nil, ErrNilShape
	}

	members := make([]MemberBinding, 0, s.Len())
	var mismatches []Mismatch
	for i := 0; i < s.Len(); i++ {
		mem := s.Member(i)

		var (
			mb MemberBinding
			mm *Mismatch
		)
		if mem.Kind == shape.KindMethod {
			mb, mm = m.bindMethod(target, mem)
		} else {
			mb, mm = m.bindField(target, mem)
		}
		if mm != nil {
			mm.Index = i
			mm.Member = mem.Name
			mm.Target = mem.Target
			mismatches = append(mismatches, *mm)
			continue
		}
		members = append(members, mb)
	}

	if len(mismatches) > 0 {
		return nil, &MismatchError{
			Target:     target,
			Shape:      s.Name(),
			ShapeID:    s.ID(),
			Mismatches: mismatches,
		}
	}
	return &Binding{Target: target, Shape: s, Members: members}, nil
}

// compatible runs the rule chain for one (from, to) pair.
func (m *Matcher) compatible(from, to reflect.Type) (Conversion, string, bool) {
	for _, rule := range m.rules {
		if conv, ok := rule.Try(from, to); ok {
			return conv, rule.Name(), true
		}
	}
	return nil, "", false
}

func (m *Matcher) bindField(target reflect.Type, mem shape.Member) (MemberBinding, *Mismatch) {
	var fieldMiss *Mismatch

	if st := structOf(target); st != nil {
		if f, ok := st.FieldByName(mem.Target); ok {
			switch {
			case !f.IsExported():
				fieldMiss = &Mismatch{Reason: ReasonUnexported, Want: mem.Type, Got: f.Type}
			default:
				if conv, rule, ok := m.compatible(f.Type, mem.Type); ok {
					return MemberBinding{
						Member:  mem,
						Access:  AccessField,
						Index:   f.Index,
						Source:  f.Type,
						Rule:    rule,
						Convert: conv,
					}, nil
				}
				fieldMiss = &Mismatch{Reason: ReasonType, Want: mem.Type, Got: f.Type}
			}
		}
	}

	if meth, ok := target.MethodByName(mem.Target); ok {
		sig := signature(target, meth.Type)
		switch {
		case sig.NumIn() != 0 || sig.NumOut() != 1:
			if fieldMiss == nil {
				fieldMiss = &Mismatch{Reason: ReasonKind, Want: mem.Type, Got: sig, Detail: "method is not a getter"}
			}
		default:
			if conv, rule, ok := m.compatible(sig.Out(0), mem.Type); ok {
				return MemberBinding{
					Member:  mem,
					Access:  AccessGetter,
					Method:  meth.Index,
					Source:  sig.Out(0),
					Rule:    rule,
					Convert: conv,
				}, nil
			}
			if fieldMiss == nil {
				fieldMiss = &Mismatch{Reason: ReasonType, Want: mem.Type, Got: sig.Out(0)}
			}
		}
	}

	if fieldMiss != nil {
		return MemberBinding{}, fieldMiss
	}
	if onPointerOnly(target, mem.Target) {
		return MemberBinding{}, &Mismatch{Reason: ReasonPointerReceiver, Want: mem.Type}
	}
	return MemberBinding{}, &Mismatch{Reason: ReasonMissing, Want: mem.Type}
}

func (m *Matcher) bindMethod(target reflect.Type, mem shape.Member) (MemberBinding, *Mismatch) {
	meth, ok := target.MethodByName(mem.Target)
	if !ok {
		if onPointerOnly(target, mem.Target) {
			return MemberBinding{}, &Mismatch{Reason: ReasonPointerReceiver, Want: mem.Type}
		}
		if st := structOf(target); st != nil {
			if f, ok := st.FieldByName(mem.Target); ok {
				return MemberBinding{}, &Mismatch{Reason: ReasonKind, Want: mem.Type, Got: f.Type, Detail: "target member is a field"}
			}
		}
		return MemberBinding{}, &Mismatch{Reason: ReasonMissing, Want: mem.Type}
	}

	decl := mem.Type
	sig := signature(target, meth.Type)
	if decl.NumIn() != sig.NumIn() || decl.NumOut() != sig.NumOut() || decl.IsVariadic() != sig.IsVariadic() {
		return MemberBinding{}, &Mismatch{Reason: ReasonArity, Want: decl, Got: sig}
	}

	params := make([]Conversion, sig.NumIn())
	for i := 0; i < sig.NumIn(); i++ {
		conv, _, ok := m.compatible(decl.In(i), sig.In(i))
		if !ok {
			return MemberBinding{}, &Mismatch{
				Reason: ReasonType,
				Want:   decl,
				Got:    sig,
				Detail: fmt.Sprintf("parameter %d", i),
			}
		}
		params[i] = conv
	}

	results := make([]Conversion, sig.NumOut())
	for i := 0; i < sig.NumOut(); i++ {
		conv, _, ok := m.compatible(sig.Out(i), decl.Out(i))
		if !ok {
			return MemberBinding{}, &Mismatch{
				Reason: ReasonType,
				Want:   decl,
				Got:    sig,
				Detail: fmt.Sprintf("result %d", i),
			}
		}
		results[i] = conv
	}

	return MemberBinding{
		Member:  mem,
		Access:  AccessMethod,
		Method:  meth.Index,
		Source:  sig,
		Rule:    "signature",
		Params:  params,
		Results: results,
	}, nil
}

// structOf returns the struct type whose fields are readable through target.
func structOf(target reflect.Type) reflect.Type {
	switch {
	case target.Kind() == reflect.Struct:
		return target
	case target.Kind() == reflect.Pointer && target.Elem().Kind() == reflect.Struct:
		return target.Elem()
	default:
		return nil
	}
}

func onPointerOnly(target reflect.Type, name string) bool {
	if target.Kind() == reflect.Pointer || target.Kind() == reflect.Interface {
		return false
	}
	_, ok := reflect.PointerTo(target).MethodByName(name)
	return ok
}

// signature strips the receiver from a method type obtained from a concrete
// type's method set. Interface method types carry no receiver.
func signature(target, methodType reflect.Type) reflect.Type {
	if target.Kind() == reflect.Interface {
		return methodType
	}
	in := make([]reflect.Type, 0, methodType.NumIn()-1)
	for i := 1; i < methodType.NumIn(); i++ {
		in = append(in, methodType.In(i))
	}
	out := make([]reflect.Type, methodType.NumOut())
	for i := range out {
		out[i] = methodType.Out(i)
	}
	return reflect.FuncOf(in, out, methodType.IsVariadic())
}

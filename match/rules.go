package match

import "reflect"

// Conversion turns a value of the source type into the declared type.
// A nil Conversion means the value is used unchanged.
type Conversion func(reflect.Value) reflect.Value

// Rule decides whether values of type from may be used where type to is declared.
type Rule interface {
	Name() string
	Try(from, to reflect.Type) (Conversion, bool)
}

// DefaultRules returns the built-in rules in priority order.
func DefaultRules() []Rule {
	return []Rule{
		&IdenticalRule{},
		&AssignableRule{},
		&SameKindRule{},
		&WideningRule{},
	}
}

// IdenticalRule: identical types, no conversion.
type IdenticalRule struct{}

func (r *IdenticalRule) Name() string { return "identical" }

func (r *IdenticalRule) Try(from, to reflect.Type) (Conversion, bool) {
	if from == to {
		return nil, true
	}
	return nil, false
}

// AssignableRule: from is assignable to to (interface satisfaction, named and
// unnamed composite types with identical underlying types).
type AssignableRule struct{}

func (r *AssignableRule) Name() string { return "assignable" }

func (r *AssignableRule) Try(from, to reflect.Type) (Conversion, bool) {
	if !from.AssignableTo(to) {
		return nil, false
	}
	// Interface values keep their dynamic type.
	if to.Kind() == reflect.Interface {
		return nil, true
	}
	return convertTo(to), true
}

// SameKindRule: basic types of the same kind, e.g. a named `type Line int`
// read as int.
type SameKindRule struct{}

func (r *SameKindRule) Name() string { return "same-kind" }

func (r *SameKindRule) Try(from, to reflect.Type) (Conversion, bool) {
	if from.Kind() != to.Kind() || !isBasic(from.Kind()) {
		return nil, false
	}
	if !from.ConvertibleTo(to) {
		return nil, false
	}
	return convertTo(to), true
}

// WideningRule: lossless numeric widening, e.g. int32 read as int64.
type WideningRule struct{}

func (r *WideningRule) Name() string { return "widening" }

func (r *WideningRule) Try(from, to reflect.Type) (Conversion, bool) {
	for _, k := range widening[from.Kind()] {
		if k == to.Kind() {
			return convertTo(to), true
		}
	}
	return nil, false
}

// widening lists, per source kind, the kinds that represent every value of
// the source exactly. int and uint are at least 32 bits wide.
var widening = map[reflect.Kind][]reflect.Kind{
	reflect.Int8:    {reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int, reflect.Float32, reflect.Float64},
	reflect.Int16:   {reflect.Int32, reflect.Int64, reflect.Int, reflect.Float32, reflect.Float64},
	reflect.Int32:   {reflect.Int64, reflect.Int, reflect.Float64},
	reflect.Int:     {reflect.Int64},
	reflect.Uint8:   {reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int, reflect.Float32, reflect.Float64},
	reflect.Uint16:  {reflect.Uint32, reflect.Uint64, reflect.Uint, reflect.Int32, reflect.Int64, reflect.Int, reflect.Float32, reflect.Float64},
	reflect.Uint32:  {reflect.Uint64, reflect.Uint, reflect.Int64, reflect.Float64},
	reflect.Uint:    {reflect.Uint64},
	reflect.Float32: {reflect.Float64},
}

func isBasic(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

func convertTo(to reflect.Type) Conversion {
	return func(v reflect.Value) reflect.Value {
		return v.Convert(to)
	}
}

// Package match decides whether a runtime type structurally satisfies a shape.
//
// Match inspects a target reflect.Type once and produces an immutable Binding:
// for every declared member, in declaration order, how to read or invoke it on
// an instance of the target type and which conversion turns the target's
// value into the declared type. Matching is all-or-nothing. When any member
// fails, every failing member is reported together in a *MismatchError and no
// Binding is returned.
//
// # Member Resolution
//
// Names are compared exactly (case-sensitive). A field-like member binds to an
// exported field, including promoted fields of embedded structs, or to an
// exported zero-argument method with a single result. A method-like member
// binds to an exported method with the same arity and variadic-ness.
//
// # Type Compatibility
//
// Compatibility is decided by an ordered chain of Rules; the first rule that
// accepts a (from, to) pair wins. DefaultRules accepts identical types,
// assignable types, same-kind conversions between named and unnamed basic
// types, and lossless numeric widening. Narrowing and cross-kind conversions
// are never accepted. Method parameters are checked from the declared type to
// the target type and results from the target type to the declared type, so
// covariant results are allowed.
package match

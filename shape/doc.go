// Package shape declares the members an instrumentation wants to read from an
// object whose concrete type is only known at run time.
//
// A Shape is plain data: an ordered list of named, typed members plus a
// projection mode. It carries no knowledge of any concrete target type; binding
// a shape to a type is the job of package match.
//
// # Declaring Shapes
//
// Shapes are built explicitly:
//
//	var errorLocation = shape.New("GraphQL.ErrorLocation", shape.ModeCopy).
//	    Field("Line", reflect.TypeFor[int]()).
//	    Field("Column", reflect.TypeFor[int]()).
//	    MustBuild()
//
// or derived from a struct declaration:
//
//	type ErrorLocation struct {
//	    shape.DuckCopy
//	    Line   int
//	    Column int
//	}
//
//	s, err := shape.Of[ErrorLocation]()
//
// # Modes
//
// ModeCopy ("copy") reads every member once and stores the values. ModeProxy
// ("proxy") keeps a reference to the source and reads through on each access.
// Copy shapes may only declare field-like members.
package shape

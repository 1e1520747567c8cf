// Package bridge projects objects of unknown concrete type onto declared
// shapes.
//
// A Bridge ties the pieces together: it matches a runtime type against a
// shape once, caches the resulting accessor (or the mismatch) for the life
// of the process, and hands out views.
//
//   - Snapshot views copy every member at projection time. They never touch
//     the source again and never fail afterwards.
//   - Proxy views keep a reference to the source and read through it on every
//     access. The caller that vended the source must keep it alive for as
//     long as the proxy is used; a read after Release, or after a Disposer
//     source reports Disposed, fails with ErrInvalidated.
//
// # Usage
//
//	type ErrorLocation struct {
//	    shape.DuckCopy
//	    Line   int
//	    Column int
//	}
//
//	loc, err := bridge.Copy[ErrorLocation](ctx, bridge.Default(), gqlErr.Location)
//	if errors.Is(err, bridge.ErrStructuralMismatch) {
//	    // the library type does not look like a location; skip instrumentation
//	}
//
// Shapes can also be built explicitly and projected untyped:
//
//	s := shape.New("ErrorLocation", shape.ModeCopy).
//	    Field("Line", reflect.TypeFor[int]()).
//	    Field("Column", reflect.TypeFor[int]()).
//	    MustBuild()
//	view, err := b.Project(ctx, obj, s)
package bridge

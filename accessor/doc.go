// Package accessor compiles a match.Binding into reusable readers.
//
// Generate runs once per (type, shape) pair. Every member binding becomes a
// closure over its pre-resolved field index path or method index and its
// pre-selected conversion. Reads do no name lookups and no rule evaluation.
package accessor

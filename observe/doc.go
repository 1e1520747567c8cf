// Package observe provides observability primitives for the binding bridge.
//
// It is a pure instrumentation library: no projection, no matching, no I/O
// beyond exporter setup. The bridge wraps binding generation with the
// Middleware and records projections through Metrics; both stay no-ops until
// an Observer is configured.
package observe

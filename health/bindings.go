package health

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jonwraymond/ducktype/cache"
	"github.com/jonwraymond/ducktype/match"
)

// EntrySource lists cached binding results.
// *bridge.Bridge and *cache.MemoryCache both satisfy it.
type EntrySource interface {
	Entries() []*cache.Entry
}

// BindingChecker reports Degraded while any (type, shape) pair is cached as
// a structural mismatch. Those pairs fail every projection until the
// process restarts.
type BindingChecker struct {
	source EntrySource
}

// NewBindingChecker creates a checker over the given source.
func NewBindingChecker(source EntrySource) *BindingChecker {
	return &BindingChecker{source: source}
}

// Name returns "bindings".
func (c *BindingChecker) Name() string { return "bindings" }

// Check inspects every cached entry.
//
// Details:
//   - bindings: number of usable accessors
//   - mismatches: number of rejected pairs
//   - rejected: sorted "<type> -> <shape>: <members>" lines
func (c *BindingChecker) Check(ctx context.Context) Result {
	if c.source == nil {
		return Unhealthy("no binding source", ErrNilSource)
	}
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	var ok int
	var rejected []string
	for _, e := range c.source.Entries() {
		if e.OK() {
			ok++
			continue
		}
		rejected = append(rejected, describe(e))
	}
	slices.Sort(rejected)

	details := map[string]any{
		"bindings":   ok,
		"mismatches": len(rejected),
	}
	if len(rejected) == 0 {
		return Healthy(fmt.Sprintf("%d bindings", ok)).WithDetails(details)
	}
	details["rejected"] = rejected
	return Degraded(fmt.Sprintf("%d of %d pairs rejected", len(rejected), ok+len(rejected))).WithDetails(details)
}

func describe(e *cache.Entry) string {
	var me *match.MismatchError
	if errors.As(e.Err, &me) {
		return fmt.Sprintf("%s -> %s: %v", me.Target, me.Shape, me.Members())
	}
	return fmt.Sprintf("%v: %v", e.Key, e.Err)
}

// CapacitySource exposes the size and policy of a binding cache.
type CapacitySource interface {
	Len() int
	Policy() cache.Policy
}

// CapacityChecker reports Degraded once a bounded cache is full. Past that
// point new pairs are rediscovered on every projection.
type CapacityChecker struct {
	source CapacitySource
}

// NewCapacityChecker creates a checker over the given cache.
func NewCapacityChecker(source CapacitySource) *CapacityChecker {
	return &CapacityChecker{source: source}
}

// Name returns "capacity".
func (c *CapacityChecker) Name() string { return "capacity" }

// Check compares the cache size against Policy.MaxEntries.
func (c *CapacityChecker) Check(ctx context.Context) Result {
	if c.source == nil {
		return Unhealthy("no cache", ErrNilSource)
	}
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	size, limit := c.source.Len(), c.source.Policy().MaxEntries
	details := map[string]any{"entries": size, "max_entries": limit}

	if limit > 0 && size >= limit {
		return Degraded(fmt.Sprintf("cache full at %d entries", size)).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d entries", size)).WithDetails(details)
}

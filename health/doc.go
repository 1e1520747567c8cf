// Package health reports on the state of the binding cache.
//
// A Checker reports one of three statuses: Healthy, Degraded, or Unhealthy.
// BindingChecker inspects cached bindings and degrades when some runtime
// types have been rejected for a shape; CapacityChecker degrades once the
// cache stops storing new bindings. Aggregator runs several checkers and
// folds their results into one.
//
// # Basic Usage
//
//	b := bridge.New()
//	agg := health.NewAggregator()
//	agg.Register(health.NewBindingChecker(b))
//	agg.Register(health.NewCapacityChecker(b.Cache()))
//
//	results := agg.CheckAll(ctx)
//	if health.OverallStatus(results) != health.StatusHealthy {
//	    log.Printf("bindings: %v", results["bindings"].Details)
//	}
package health

package health

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds CheckAll when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// AggregatorConfig configures the health aggregator.
type AggregatorConfig struct {
	// Timeout is the maximum time to wait for all checks.
	// Default: DefaultTimeout
	Timeout time.Duration

	// Concurrency caps checks running at once. Zero or negative means no cap.
	Concurrency int
}

// Aggregator runs a set of checkers and folds their results.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Ordering: checkers are reported under their Name; re-registering a
//   name replaces the checker in place.
type Aggregator struct {
	config   AggregatorConfig
	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string
}

// NewAggregator creates a new health aggregator.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	var cfg AggregatorConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Aggregator{
		config:   cfg,
		checkers: make(map[string]Checker),
	}
}

// Register adds checkers under their names.
func (a *Aggregator) Register(checkers ...Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, c := range checkers {
		name := c.Name()
		if _, exists := a.checkers[name]; !exists {
			a.order = append(a.order, name)
		}
		a.checkers[name] = c
	}
}

// Names returns the registered checker names in registration order.
func (a *Aggregator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.order)
}

// Check runs a single named check.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	c, ok := a.checkers[name]
	a.mu.RUnlock()
	if !ok {
		return Result{}, ErrCheckerNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()
	return run(ctx, c), nil
}

// CheckAll runs every registered check and returns results keyed by name.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	a.mu.RLock()
	checkers := make([]Checker, 0, len(a.order))
	for _, name := range a.order {
		checkers = append(checkers, a.checkers[name])
	}
	a.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	results := make([]Result, len(checkers))
	var g errgroup.Group
	if a.config.Concurrency > 0 {
		g.SetLimit(a.config.Concurrency)
	}
	for i, c := range checkers {
		g.Go(func() error {
			results[i] = run(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]Result, len(checkers))
	for i, c := range checkers {
		out[c.Name()] = results[i]
	}
	return out
}

// OverallStatus folds results: any Unhealthy wins, then any Degraded.
// An empty set is Healthy.
func OverallStatus(results map[string]Result) Status {
	overall := StatusHealthy
	for _, r := range results {
		if r.Status > overall {
			overall = r.Status
		}
	}
	return overall
}

// run executes c, stamping duration and reporting a timeout if ctx ends first.
func run(ctx context.Context, c Checker) Result {
	start := time.Now()
	ch := make(chan Result, 1)

	go func() {
		r := c.Check(ctx)
		r.Duration = time.Since(start)
		if r.Timestamp.IsZero() {
			r.Timestamp = start
		}
		ch <- r
	}()

	select {
	case r := <-ch:
		return r
	case <-ctx.Done():
		return Result{
			Status:    StatusUnhealthy,
			Message:   "check timed out",
			Error:     ErrCheckTimeout,
			Duration:  time.Since(start),
			Timestamp: start,
		}
	}
}

// Checker returns the aggregator as a single Checker named "aggregate".
func (a *Aggregator) Checker() Checker {
	return NewCheckerFunc("aggregate", func(ctx context.Context) Result {
		results := a.CheckAll(ctx)

		details := make(map[string]any, len(results))
		for name, r := range results {
			details[name] = r.Status.String()
		}

		status := OverallStatus(results)
		var message string
		switch status {
		case StatusHealthy:
			message = "all checks passed"
		case StatusDegraded:
			message = "some checks degraded"
		default:
			message = "some checks failed"
		}
		return Result{
			Status:    status,
			Message:   message,
			Details:   details,
			Timestamp: time.Now(),
		}
	})
}

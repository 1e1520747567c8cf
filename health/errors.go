package health

import "errors"

var (
	// ErrCheckTimeout indicates a health check did not finish in time.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates no checker is registered under a name.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrNilSource indicates a checker was built without a source.
	ErrNilSource = errors.New("health: source is nil")
)

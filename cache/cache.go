package cache

import (
	"errors"
	"reflect"

	"github.com/jonwraymond/ducktype/accessor"
)

// ErrInvalidKey is returned for a key without a type or shape ID.
var ErrInvalidKey = errors.New("cache: key is invalid")

// Entry is a cached binding result: an accessor on success, or the
// structural mismatch that prevented one.
//
// Contract:
// - Immutability: entries are never mutated once stored.
// - Exactly one of Accessor and Err is set.
type Entry struct {
	Key      Key
	Accessor *accessor.Accessor
	Err      error
}

// OK reports whether the entry holds an accessor.
func (e *Entry) OK() bool { return e.Err == nil && e.Accessor != nil }

// CreateFunc builds the result for a key on a cache miss.
type CreateFunc func() (*accessor.Accessor, error)

// Cache is the interface for storing binding results.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use; reads of
//   present keys must not block on writes of other keys.
// - Convergence: concurrent GetOrCreate calls for one key must all observe
//   the same stored Entry.
// - Errors: Get never errors; it returns (nil, false) on miss.
type Cache interface {
	// Get returns the entry for key. Returns (nil, false) on miss.
	Get(key Key) (*Entry, bool)

	// GetOrCreate returns the entry for key, calling create on a miss.
	// hit reports whether the entry was already present.
	GetOrCreate(key Key, create CreateFunc) (entry *Entry, hit bool)

	// Len returns the number of stored entries.
	Len() int
}

// ValidateKey checks that a key can be stored.
func ValidateKey(key Key) error {
	if key.Type == nil || key.Shape == "" {
		return ErrInvalidKey
	}
	return nil
}

// KeyOf builds the key for a runtime type and a shape ID.
func KeyOf(t reflect.Type, shapeID string) Key {
	return Key{Type: t, Shape: shapeID}
}

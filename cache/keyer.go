package cache

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// TypeID is the process-wide identity of a runtime type, assigned on first
// encounter.
type TypeID uint64

// Key identifies one (runtime type, shape) pairing.
type Key struct {
	Type  reflect.Type
	Shape string // shape.Shape.ID()
}

// String renders the key for logs. Distinct types with the same printed
// name render identically; use Keyer.Key for a unique string.
func (k Key) String() string {
	return fmt.Sprintf("%v|%s", k.Type, k.Shape)
}

// Keyer assigns TypeIDs and renders unique string keys.
//
// Contract:
// - Determinism: a type keeps its TypeID for the life of the Keyer.
// - Concurrency: safe for concurrent use.
type Keyer struct {
	ids  sync.Map // map[reflect.Type]TypeID
	next atomic.Uint64
}

// NewKeyer creates a new keyer.
func NewKeyer() *Keyer {
	return &Keyer{}
}

// Identify returns the TypeID of t, assigning one on first encounter.
func (k *Keyer) Identify(t reflect.Type) TypeID {
	if id, ok := k.ids.Load(t); ok {
		return id.(TypeID)
	}
	id, _ := k.ids.LoadOrStore(t, TypeID(k.next.Add(1)))
	return id.(TypeID)
}

// Key renders a unique string for key.
// Format: ducktype:<typeid>:<shapeid>
func (k *Keyer) Key(key Key) string {
	return fmt.Sprintf("ducktype:%d:%s", k.Identify(key.Type), key.Shape)
}

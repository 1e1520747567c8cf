package cache

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Stats counts cache activity.
type Stats struct {
	Hits      uint64 // GetOrCreate calls answered from the cache
	Misses    uint64 // GetOrCreate calls that found no entry
	Creations uint64 // create invocations (structural discovery runs)
	Entries   int    // stored entries
}

// MemoryCache is an in-memory cache implementation.
type MemoryCache struct {
	entries sync.Map // map[Key]*Entry
	size    atomic.Int64
	group   singleflight.Group // one create per key at a time
	keyer   *Keyer
	policy  Policy

	hits      atomic.Uint64
	misses    atomic.Uint64
	creations atomic.Uint64
}

// NewMemoryCache creates a new in-memory cache with the given policy.
func NewMemoryCache(policy Policy) *MemoryCache {
	return &MemoryCache{
		keyer:  NewKeyer(),
		policy: policy,
	}
}

// Get retrieves an entry from the cache. Returns (nil, false) on miss.
func (c *MemoryCache) Get(key Key) (*Entry, bool) {
	e, ok := c.entries.Load(key)
	if !ok {
		return nil, false
	}
	return e.(*Entry), true
}

// GetOrCreate returns the stored entry for key, or runs create once for all
// concurrent callers of the same key and stores its result. The first stored
// entry wins; later stores for the same key observe it instead.
// An invalid key is never stored; its entry carries ErrInvalidKey.
func (c *MemoryCache) GetOrCreate(key Key, create CreateFunc) (*Entry, bool) {
	if err := ValidateKey(key); err != nil {
		return &Entry{Key: key, Err: err}, false
	}
	if e, ok := c.entries.Load(key); ok {
		c.hits.Add(1)
		return e.(*Entry), true
	}
	c.misses.Add(1)

	v, _, _ := c.group.Do(c.keyer.Key(key), func() (any, error) {
		// A caller that lost the race to a completed create finds it here.
		if e, ok := c.entries.Load(key); ok {
			return e, nil
		}

		c.creations.Add(1)
		acc, err := create()
		entry := &Entry{Key: key, Accessor: acc, Err: err}
		if err != nil {
			entry.Accessor = nil
		}

		if !c.reserve(entry) {
			return entry, nil
		}
		actual, loaded := c.entries.LoadOrStore(key, entry)
		if loaded {
			c.size.Add(-1)
		}
		return actual, nil
	})
	return v.(*Entry), false
}

// reserve claims a slot for entry under the policy. Creates for different
// keys run concurrently, so the check and the claim are one CAS.
func (c *MemoryCache) reserve(entry *Entry) bool {
	for {
		n := c.size.Load()
		if !c.policy.ShouldStore(entry, int(n)) {
			return false
		}
		if c.size.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Len returns the number of stored entries.
func (c *MemoryCache) Len() int {
	return int(c.size.Load())
}

// Policy returns the caching policy.
func (c *MemoryCache) Policy() Policy { return c.policy }

// Stats returns a snapshot of cache counters.
func (c *MemoryCache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Creations: c.creations.Load(),
		Entries:   c.Len(),
	}
}

// Entries returns a snapshot of stored entries. Order is unspecified.
func (c *MemoryCache) Entries() []*Entry {
	out := make([]*Entry, 0, c.Len())
	c.entries.Range(func(_, v any) bool {
		out = append(out, v.(*Entry))
		return true
	})
	return out
}

// Ensure MemoryCache implements Cache
var _ Cache = (*MemoryCache)(nil)

package cache

// Policy configures caching behavior.
type Policy struct {
	// CacheMismatches stores structural failures so a permanently
	// incompatible pair fails fast on later calls.
	CacheMismatches bool

	// MaxEntries caps the number of stored entries. Results produced once
	// the cap is reached are returned but not stored; nothing is evicted.
	// If zero, no maximum is enforced.
	MaxEntries int
}

// DefaultPolicy returns the default caching policy.
// CacheMismatches: true, MaxEntries: unbounded.
func DefaultPolicy() Policy {
	return Policy{
		CacheMismatches: true,
		MaxEntries:      0,
	}
}

// ShouldStore reports whether a result may be stored given the current size.
func (p Policy) ShouldStore(entry *Entry, size int) bool {
	if entry.Err != nil && !p.CacheMismatches {
		return false
	}
	if p.MaxEntries > 0 && size >= p.MaxEntries {
		return false
	}
	return true
}

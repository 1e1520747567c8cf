// Package cache stores generated accessors per (runtime type, shape) pair.
//
// It provides a Cache interface with a lock-free-read memory implementation,
// a Keyer that assigns process-wide identities to runtime types, and a Policy
// controlling negative caching. Entries live for the life of the process;
// there is no expiry and no eviction.
package cache

package types

import "time"

// Clock abstracts the time source so TTL behavior is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// EvictionPolicy selects a victim among the current entries when a store
// is full.
type EvictionPolicy interface {
	// SelectVictim returns the key of the entry to evict. The entries
	// slice is never empty in normal operation: stores only evict when
	// they are at capacity. Implementations must fail with an
	// EMPTY_STORE_EVICTION error rather than guess when it is.
	SelectVictim(entries []EntryInfo, now time.Time) (string, error)
}

// Cache is the contract shared by the flat store and the tiered cache.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Put(key string, value V) error
	PutTTL(key string, value V, ttl time.Duration) error
	Remove(key string)
	Clear()
	Len() int
	Stats() CacheStats
}

// Statser is implemented by anything that can report cache statistics.
// The metrics collector scrapes registered Statsers on demand.
type Statser interface {
	Stats() CacheStats
}

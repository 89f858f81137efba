package cache

import (
	"time"

	"github.com/cachekit/cachekit/pkg/types"
)

// entry is a single cached record plus the bookkeeping metadata the
// eviction policies key off. All mutation happens under the owning
// store's lock.
type entry[V any] struct {
	key            string
	value          V
	insertedAt     time.Time
	lastAccessedAt time.Time
	accessCount    uint64
	ttl            time.Duration // zero means no expiry
}

func newEntry[V any](key string, value V, now time.Time, ttl time.Duration) *entry[V] {
	return &entry[V]{
		key:            key,
		value:          value,
		insertedAt:     now,
		lastAccessedAt: now,
		ttl:            ttl,
	}
}

// expired reports whether the entry's TTL has elapsed. Expired entries
// are treated as absent on lookup even while still physically present.
func (e *entry[V]) expired(now time.Time) bool {
	return e.ttl > 0 && now.Sub(e.insertedAt) > e.ttl
}

// touch records a hit against the entry.
func (e *entry[V]) touch(now time.Time) {
	e.lastAccessedAt = now
	e.accessCount++
}

// info snapshots the entry's metadata for victim selection.
func (e *entry[V]) info() types.EntryInfo {
	return types.EntryInfo{
		Key:            e.key,
		InsertedAt:     e.insertedAt,
		LastAccessedAt: e.lastAccessedAt,
		AccessCount:    e.accessCount,
		TTL:            e.ttl,
	}
}

package cache

import (
	"sync"
	"time"

	cacheerrors "github.com/cachekit/cachekit/pkg/errors"
	"github.com/cachekit/cachekit/pkg/types"
)

// TieredConfig represents two-level cache configuration.
type TieredConfig struct {
	L1 StoreConfig
	L2 StoreConfig
}

// TieredStats tracks statistics across both levels plus the combined
// caller-visible hit/miss totals.
type TieredStats struct {
	L1      types.CacheStats `json:"l1"`
	L2      types.CacheStats `json:"l2"`
	Hits    uint64           `json:"hits"`
	Misses  uint64           `json:"misses"`
	HitRate float64          `json:"hit_rate"`
}

// Tiered chains a small fast L1 store in front of a larger L2 store with
// promote-on-hit semantics. Writes go through to both tiers, so L2
// always holds a superset of L1's keys and an L1 eviction never loses
// data outright.
type Tiered[V any] struct {
	l1 *Store[V]
	l2 *Store[V]

	statsMu sync.Mutex
	hits    uint64
	misses  uint64
}

// NewTiered builds both levels from cfg. L1's capacity must not exceed
// L2's: a larger L1 defeats the tiering rationale.
func NewTiered[V any](cfg *TieredConfig) (*Tiered[V], error) {
	if cfg == nil {
		return nil, cacheerrors.NewInvalidConfig("tiered configuration is required")
	}
	l1, err := NewStore[V](&cfg.L1)
	if err != nil {
		return nil, err
	}
	l2, err := NewStore[V](&cfg.L2)
	if err != nil {
		l1.Close()
		return nil, err
	}
	if l1.Capacity() > l2.Capacity() {
		l1.Close()
		l2.Close()
		return nil, cacheerrors.NewInvalidConfig("l1 capacity %d exceeds l2 capacity %d", l1.Capacity(), l2.Capacity()).
			WithDetail("l1_capacity", l1.Capacity()).
			WithDetail("l2_capacity", l2.Capacity())
	}
	return &Tiered[V]{l1: l1, l2: l2}, nil
}

// Get checks L1 first and returns immediately on a hit. On an L1 miss it
// checks L2; an L2 hit promotes the entry into L1 (which may evict from
// L1) before returning. The promotion is an internal side effect, not a
// caller write. A miss in both levels is the combined miss.
func (t *Tiered[V]) Get(key string) (V, bool) {
	if value, ok := t.l1.Get(key); ok {
		t.recordHit()
		return value, true
	}

	value, ok := t.l2.Get(key)
	if !ok {
		t.recordMiss()
		var zero V
		return zero, false
	}

	// Promotion failures are policy invariant violations; the L2 value
	// is still good, so serve it.
	_ = t.l1.Put(key, value)
	t.recordHit()
	return value, true
}

// Put writes through to both tiers with each tier's default TTL.
func (t *Tiered[V]) Put(key string, value V) error {
	if err := t.l1.Put(key, value); err != nil {
		return err
	}
	return t.l2.Put(key, value)
}

// PutTTL writes through to both tiers with an explicit TTL.
func (t *Tiered[V]) PutTTL(key string, value V, ttl time.Duration) error {
	if err := t.l1.PutTTL(key, value, ttl); err != nil {
		return err
	}
	return t.l2.PutTTL(key, value, ttl)
}

// Remove deletes key from both tiers. Idempotent.
func (t *Tiered[V]) Remove(key string) {
	t.l1.Remove(key)
	t.l2.Remove(key)
}

// Clear empties both tiers and resets all statistics.
func (t *Tiered[V]) Clear() {
	t.l1.Clear()
	t.l2.Clear()
	t.statsMu.Lock()
	t.hits = 0
	t.misses = 0
	t.statsMu.Unlock()
}

// Len returns the number of distinct resident keys, which by the
// write-through superset invariant is L2's occupancy.
func (t *Tiered[V]) Len() int {
	return t.l2.Len()
}

// L1 exposes the fast tier, primarily for inspection in tests and tools.
func (t *Tiered[V]) L1() *Store[V] { return t.l1 }

// L2 exposes the slow tier.
func (t *Tiered[V]) L2() *Store[V] { return t.l2 }

// Stats returns the caller-visible combined statistics for metrics
// registration. Hits count a hit at either level; misses only a miss at
// both.
func (t *Tiered[V]) Stats() types.CacheStats {
	t.statsMu.Lock()
	hits, misses := t.hits, t.misses
	t.statsMu.Unlock()

	l2 := t.l2.Stats()
	stats := types.CacheStats{
		Hits:      hits,
		Misses:    misses,
		Evictions: t.l1.Stats().Evictions + l2.Evictions,
		Size:      l2.Size,
		Capacity:  l2.Capacity,
	}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	if l2.Capacity > 0 {
		stats.Utilization = float64(l2.Size) / float64(l2.Capacity)
	}
	return stats
}

// TierStats returns per-level statistics alongside the combined totals.
func (t *Tiered[V]) TierStats() TieredStats {
	t.statsMu.Lock()
	hits, misses := t.hits, t.misses
	t.statsMu.Unlock()

	stats := TieredStats{
		L1:     t.l1.Stats(),
		L2:     t.l2.Stats(),
		Hits:   hits,
		Misses: misses,
	}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats
}

// Close stops both tiers' background sweepers.
func (t *Tiered[V]) Close() {
	t.l1.Close()
	t.l2.Close()
}

func (t *Tiered[V]) recordHit() {
	t.statsMu.Lock()
	t.hits++
	t.statsMu.Unlock()
}

func (t *Tiered[V]) recordMiss() {
	t.statsMu.Lock()
	t.misses++
	t.statsMu.Unlock()
}

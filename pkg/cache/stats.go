package cache

import "github.com/cachekit/cachekit/pkg/types"

// statsTracker owns the hit/miss/eviction counters for one store. It is
// guarded by the store's lock; derived values (hit rate, utilization)
// are computed at snapshot time and never stored, so they cannot go
// stale.
type statsTracker struct {
	hits      uint64
	misses    uint64
	evictions uint64
}

func (s *statsTracker) recordHit()      { s.hits++ }
func (s *statsTracker) recordMiss()     { s.misses++ }
func (s *statsTracker) recordEviction() { s.evictions++ }

func (s *statsTracker) reset() {
	s.hits = 0
	s.misses = 0
	s.evictions = 0
}

// snapshot materializes the counters plus derived rates for the given
// occupancy. Hit rate is defined as zero when no accesses have occurred.
func (s *statsTracker) snapshot(size, capacity int) types.CacheStats {
	stats := types.CacheStats{
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
		Size:      size,
		Capacity:  capacity,
	}
	if total := s.hits + s.misses; total > 0 {
		stats.HitRate = float64(s.hits) / float64(total)
	}
	if capacity > 0 {
		stats.Utilization = float64(size) / float64(capacity)
	}
	return stats
}

package cache

import (
	"sync"
	"time"

	cacheerrors "github.com/cachekit/cachekit/pkg/errors"
	"github.com/cachekit/cachekit/pkg/types"
)

// StoreConfig represents store configuration.
type StoreConfig struct {
	// Capacity is the maximum number of entries. Required, positive.
	Capacity int

	// Policy selects the eviction strategy. Empty means LRU.
	Policy types.PolicyKind

	// DefaultTTL is applied by Put to entries with no explicit TTL.
	// Zero means entries do not expire unless PutTTL says otherwise.
	DefaultTTL time.Duration

	// SweepInterval, when positive, starts a background janitor that
	// proactively removes expired entries. Close stops it.
	SweepInterval time.Duration

	// RandSeed feeds the random eviction policy for reproducible tests.
	RandSeed int64

	// Clock overrides the time source. Nil means wall clock.
	Clock types.Clock
}

// realClock is the default wall-clock time source.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Store is a bounded, thread-safe, in-memory cache. A single mutex
// guards the entry map and the statistics: lookups are not pure reads,
// they mutate access metadata.
type Store[V any] struct {
	mu         sync.Mutex
	capacity   int
	entries    map[string]*entry[V]
	policy     types.EvictionPolicy
	stats      statsTracker
	clock      types.Clock
	defaultTTL time.Duration

	sweepStop chan struct{}
	sweepDone chan struct{}
	closeOnce sync.Once
}

// NewStore creates a bounded store. Configuration problems surface here,
// never at first insertion.
func NewStore[V any](cfg *StoreConfig) (*Store[V], error) {
	if cfg == nil {
		return nil, cacheerrors.NewInvalidConfig("store configuration is required")
	}
	if cfg.Capacity <= 0 {
		return nil, cacheerrors.NewInvalidConfig("capacity must be a positive integer, got %d", cfg.Capacity)
	}
	policy, err := NewPolicy(cfg.Policy, cfg.RandSeed)
	if err != nil {
		return nil, err
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}

	s := &Store[V]{
		capacity:   cfg.Capacity,
		entries:    make(map[string]*entry[V], cfg.Capacity),
		policy:     policy,
		clock:      clock,
		defaultTTL: cfg.DefaultTTL,
	}

	if cfg.SweepInterval > 0 {
		s.sweepStop = make(chan struct{})
		s.sweepDone = make(chan struct{})
		go s.sweepLoop(cfg.SweepInterval)
	}

	return s, nil
}

// Get returns the live value for key. A missing or expired entry is a
// miss and returns the zero value with ok=false; expired entries are
// physically removed at this point (lazy expiry).
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	e, ok := s.entries[key]
	if !ok {
		s.stats.recordMiss()
		return zero, false
	}

	now := s.clock.Now()
	if e.expired(now) {
		delete(s.entries, key)
		s.stats.recordMiss()
		return zero, false
	}

	e.touch(now)
	s.stats.recordHit()
	return e.value, true
}

// Put stores value under key with the store's default TTL. Overwriting
// an existing key replaces its entry wholesale: fresh timestamps, access
// count back to zero.
func (s *Store[V]) Put(key string, value V) error {
	return s.PutTTL(key, value, s.defaultTTL)
}

// PutTTL stores value under key with an explicit TTL; zero means the
// entry never expires. If the store is at capacity the eviction policy
// removes exactly one victim before the insertion, so occupancy never
// exceeds capacity. The returned error is nil in normal operation; it
// fires only on an eviction-policy invariant violation.
func (s *Store[V]) PutTTL(key string, value V, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if _, ok := s.entries[key]; ok {
		s.entries[key] = newEntry(key, value, now, ttl)
		return nil
	}

	if len(s.entries) >= s.capacity {
		if err := s.evictOne(now); err != nil {
			return err
		}
	}

	s.entries[key] = newEntry(key, value, now, ttl)
	return nil
}

// Remove deletes the entry for key if present. Removing a missing key is
// a no-op, never an error, and does not count as an eviction.
func (s *Store[V]) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Clear empties the store and resets its statistics to zero.
func (s *Store[V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry[V], s.capacity)
	s.stats.reset()
}

// Len returns the current number of entries, including any expired
// entries not yet swept.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Capacity returns the configured maximum entry count.
func (s *Store[V]) Capacity() int {
	return s.capacity
}

// Keys returns the resident keys (for debugging and the bench tool).
func (s *Store[V]) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	return keys
}

// Stats returns a statistics snapshot.
func (s *Store[V]) Stats() types.CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.snapshot(len(s.entries), s.capacity)
}

// Sweep proactively removes expired entries and returns how many were
// removed. Sweep removals are expiries, not evictions, and count toward
// neither statistic.
func (s *Store[V]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Close stops the background sweeper if one was configured. The store
// remains usable after Close.
func (s *Store[V]) Close() {
	s.closeOnce.Do(func() {
		if s.sweepStop != nil {
			close(s.sweepStop)
			<-s.sweepDone
		}
	})
}

func (s *Store[V]) sweepLoop(interval time.Duration) {
	defer close(s.sweepDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.sweepStop:
			return
		}
	}
}

// evictOne delegates victim selection to the policy and removes the
// victim. Caller holds the lock.
func (s *Store[V]) evictOne(now time.Time) error {
	if len(s.entries) == 0 {
		return cacheerrors.NewEmptyStoreEviction()
	}

	infos := make([]types.EntryInfo, 0, len(s.entries))
	for _, e := range s.entries {
		infos = append(infos, e.info())
	}

	victim, err := s.policy.SelectVictim(infos, now)
	if err != nil {
		return err
	}
	if _, ok := s.entries[victim]; !ok {
		return cacheerrors.NewVictimNotResident(victim)
	}

	delete(s.entries, victim)
	s.stats.recordEviction()
	return nil
}

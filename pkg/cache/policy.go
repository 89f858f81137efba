package cache

import (
	"math/rand"
	"sort"
	"time"

	cacheerrors "github.com/cachekit/cachekit/pkg/errors"
	"github.com/cachekit/cachekit/pkg/types"
)

// NewPolicy constructs the eviction policy for kind. An empty kind
// selects LRU. seed feeds the random policy's generator so tests can
// reproduce its choices; a zero seed falls back to a wall-clock seed.
// The other policies ignore it.
func NewPolicy(kind types.PolicyKind, seed int64) (types.EvictionPolicy, error) {
	switch kind {
	case "", types.PolicyLRU:
		return lruPolicy{}, nil
	case types.PolicyLFU:
		return lfuPolicy{}, nil
	case types.PolicyFIFO:
		return fifoPolicy{}, nil
	case types.PolicyRandom:
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		return &randomPolicy{rng: rand.New(rand.NewSource(seed))}, nil
	case types.PolicyTTLFirst:
		return ttlFirstPolicy{}, nil
	default:
		return nil, cacheerrors.NewInvalidConfig("unknown eviction policy %q", kind)
	}
}

// lruPolicy evicts the entry with the oldest last access. Ties break on
// the older insertion, then lexicographically smallest key, so victim
// selection is fully deterministic for a fixed entry set.
type lruPolicy struct{}

func (lruPolicy) SelectVictim(entries []types.EntryInfo, _ time.Time) (string, error) {
	return selectMin(entries, lruBefore)
}

func lruBefore(a, b types.EntryInfo) bool {
	if !a.LastAccessedAt.Equal(b.LastAccessedAt) {
		return a.LastAccessedAt.Before(b.LastAccessedAt)
	}
	if !a.InsertedAt.Equal(b.InsertedAt) {
		return a.InsertedAt.Before(b.InsertedAt)
	}
	return a.Key < b.Key
}

// lfuPolicy evicts the entry with the fewest recorded hits. Ties break
// on the oldest last access, then key order.
type lfuPolicy struct{}

func (lfuPolicy) SelectVictim(entries []types.EntryInfo, _ time.Time) (string, error) {
	return selectMin(entries, func(a, b types.EntryInfo) bool {
		if a.AccessCount != b.AccessCount {
			return a.AccessCount < b.AccessCount
		}
		if !a.LastAccessedAt.Equal(b.LastAccessedAt) {
			return a.LastAccessedAt.Before(b.LastAccessedAt)
		}
		return a.Key < b.Key
	})
}

// fifoPolicy evicts the oldest insertion regardless of access recency.
// Ties break on key order.
type fifoPolicy struct{}

func (fifoPolicy) SelectVictim(entries []types.EntryInfo, _ time.Time) (string, error) {
	return selectMin(entries, fifoBefore)
}

func fifoBefore(a, b types.EntryInfo) bool {
	if !a.InsertedAt.Equal(b.InsertedAt) {
		return a.InsertedAt.Before(b.InsertedAt)
	}
	return a.Key < b.Key
}

// randomPolicy evicts a uniformly random entry. Candidates are ordered
// by key before drawing so a fixed seed yields a reproducible pick even
// though the entries arrive in map-iteration order.
type randomPolicy struct {
	rng *rand.Rand
}

func (p *randomPolicy) SelectVictim(entries []types.EntryInfo, _ time.Time) (string, error) {
	if len(entries) == 0 {
		return "", cacheerrors.NewEmptyStoreEviction()
	}
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	sort.Strings(keys)
	return keys[p.rng.Intn(len(keys))], nil
}

// ttlFirstPolicy prefers entries whose TTL has already elapsed, earliest
// insertion first. With no expired entries it falls back to LRU.
type ttlFirstPolicy struct{}

func (ttlFirstPolicy) SelectVictim(entries []types.EntryInfo, now time.Time) (string, error) {
	if len(entries) == 0 {
		return "", cacheerrors.NewEmptyStoreEviction()
	}
	var expired []types.EntryInfo
	for _, e := range entries {
		if e.Expired(now) {
			expired = append(expired, e)
		}
	}
	if len(expired) > 0 {
		return selectMin(expired, fifoBefore)
	}
	return selectMin(entries, lruBefore)
}

// selectMin scans for the entry that orders before all others under
// before. It fails loudly on an empty slice: stores only evict at
// capacity, so reaching this with no entries is a programming error.
func selectMin(entries []types.EntryInfo, before func(a, b types.EntryInfo) bool) (string, error) {
	if len(entries) == 0 {
		return "", cacheerrors.NewEmptyStoreEviction()
	}
	victim := entries[0]
	for _, e := range entries[1:] {
		if before(e, victim) {
			victim = e
		}
	}
	return victim.Key, nil
}

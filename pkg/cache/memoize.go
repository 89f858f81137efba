package cache

import (
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	cacheerrors "github.com/cachekit/cachekit/pkg/errors"
	"github.com/cachekit/cachekit/pkg/types"
)

// MemoizerConfig represents memoizer configuration.
type MemoizerConfig[I any] struct {
	// Store configures the backing store. Required.
	Store StoreConfig

	// KeyFunc canonically serializes an input into a cache key. Nil
	// selects JSON encoding, which is canonical for map inputs because
	// encoding/json sorts map keys.
	KeyFunc func(input I) (string, error)

	// Bypass, when non-nil and true for an input, skips the cache for
	// both read and write: the call computes directly and is invisible
	// to statistics.
	Bypass func(input I) bool

	// TTL applies to stored results; zero means the store's default.
	TTL time.Duration

	// SingleFlight coalesces concurrent misses on the same key into one
	// computation. Off by default.
	SingleFlight bool
}

// Memoizer caches the results of an expensive deterministic function,
// keyed by a canonical serialization of its input. Failed computations
// are never stored, so a transient error cannot be memoized.
type Memoizer[I any, V any] struct {
	fn     func(I) (V, error)
	store  *Store[V]
	keyFn  func(I) (string, error)
	bypass func(I) bool
	ttl    time.Duration
	group  *singleflight.Group // nil unless single-flight is enabled
}

// NewMemoizer wraps fn with a dedicated backing store.
func NewMemoizer[I any, V any](fn func(I) (V, error), cfg *MemoizerConfig[I]) (*Memoizer[I, V], error) {
	if fn == nil {
		return nil, cacheerrors.NewInvalidConfig("memoizer requires a non-nil function")
	}
	if cfg == nil {
		return nil, cacheerrors.NewInvalidConfig("memoizer configuration is required")
	}
	store, err := NewStore[V](&cfg.Store)
	if err != nil {
		return nil, err
	}

	keyFn := cfg.KeyFunc
	if keyFn == nil {
		keyFn = jsonKey[I]
	}

	m := &Memoizer[I, V]{
		fn:     fn,
		store:  store,
		keyFn:  keyFn,
		bypass: cfg.Bypass,
		ttl:    cfg.TTL,
	}
	if cfg.SingleFlight {
		m.group = &singleflight.Group{}
	}
	return m, nil
}

// Get returns the cached result for input, computing and storing it on a
// miss. The wrapped computation runs outside the store's lock; without
// single-flight, two concurrent misses on the same key may both invoke
// the function. A computation error propagates unchanged and nothing is
// stored.
func (m *Memoizer[I, V]) Get(input I) (V, error) {
	return m.get(input, m.ttl)
}

// GetTTL behaves like Get but stores a freshly computed result with an
// explicit TTL instead of the memoizer's configured one.
func (m *Memoizer[I, V]) GetTTL(input I, ttl time.Duration) (V, error) {
	return m.get(input, ttl)
}

func (m *Memoizer[I, V]) get(input I, ttl time.Duration) (V, error) {
	var zero V

	if m.bypass != nil && m.bypass(input) {
		return m.fn(input)
	}

	key, err := m.keyFn(input)
	if err != nil {
		return zero, cacheerrors.NewKeyEncoding(err)
	}

	if value, ok := m.store.Get(key); ok {
		return value, nil
	}

	if m.group != nil {
		result, err, _ := m.group.Do(key, func() (interface{}, error) {
			value, err := m.fn(input)
			if err != nil {
				return nil, err
			}
			return value, m.put(key, value, ttl)
		})
		if err != nil {
			return zero, err
		}
		return result.(V), nil
	}

	value, err := m.fn(input)
	if err != nil {
		return zero, err
	}
	if err := m.put(key, value, ttl); err != nil {
		return zero, err
	}
	return value, nil
}

// Invalidate drops the cached result for input, if any.
func (m *Memoizer[I, V]) Invalidate(input I) error {
	key, err := m.keyFn(input)
	if err != nil {
		return cacheerrors.NewKeyEncoding(err)
	}
	m.store.Remove(key)
	return nil
}

// Stats returns the backing store's statistics. Bypassed calls never
// appear here.
func (m *Memoizer[I, V]) Stats() types.CacheStats {
	return m.store.Stats()
}

// Clear empties the backing store and resets its statistics.
func (m *Memoizer[I, V]) Clear() {
	m.store.Clear()
}

// Close stops the backing store's sweeper if one was configured.
func (m *Memoizer[I, V]) Close() {
	m.store.Close()
}

func (m *Memoizer[I, V]) put(key string, value V, ttl time.Duration) error {
	if ttl > 0 {
		return m.store.PutTTL(key, value, ttl)
	}
	return m.store.Put(key, value)
}

func jsonKey[I any](input I) (string, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

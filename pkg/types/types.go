package types

import "time"

// CacheStats represents cache performance statistics
type CacheStats struct {
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	Evictions   uint64  `json:"evictions"`
	Size        int     `json:"size"`
	Capacity    int     `json:"capacity"`
	HitRate     float64 `json:"hit_rate"`
	Utilization float64 `json:"utilization"`
}

// EntryInfo is a read-only snapshot of one entry's bookkeeping metadata.
// Eviction policies receive a slice of these during victim selection and
// must not assume any particular ordering.
type EntryInfo struct {
	Key            string        `json:"key"`
	InsertedAt     time.Time     `json:"inserted_at"`
	LastAccessedAt time.Time     `json:"last_accessed_at"`
	AccessCount    uint64        `json:"access_count"`
	TTL            time.Duration `json:"ttl"` // zero means no expiry
}

// Expired reports whether the entry's TTL has elapsed at the given time.
func (e EntryInfo) Expired(now time.Time) bool {
	return e.TTL > 0 && now.Sub(e.InsertedAt) > e.TTL
}

// PolicyKind identifies an eviction strategy.
type PolicyKind string

// Supported eviction strategies.
const (
	PolicyLRU      PolicyKind = "lru"
	PolicyLFU      PolicyKind = "lfu"
	PolicyFIFO     PolicyKind = "fifo"
	PolicyRandom   PolicyKind = "random"
	PolicyTTLFirst PolicyKind = "ttl_first"
)

// Valid reports whether k names a known eviction strategy. The empty
// string is valid and means "use the default" (LRU).
func (k PolicyKind) Valid() bool {
	switch k {
	case "", PolicyLRU, PolicyLFU, PolicyFIFO, PolicyRandom, PolicyTTLFirst:
		return true
	}
	return false
}

package cache

import (
	"fmt"
	"testing"
	"time"

	cacheerrors "github.com/cachekit/cachekit/pkg/errors"
	"github.com/cachekit/cachekit/pkg/types"
)

// Both cache shapes satisfy the shared contract.
var (
	_ types.Cache[string] = (*Store[string])(nil)
	_ types.Cache[string] = (*Tiered[string])(nil)
)

func mustTiered(t *testing.T, l1Cap, l2Cap int) *Tiered[string] {
	t.Helper()
	tc, err := NewTiered[string](&TieredConfig{
		L1: StoreConfig{Capacity: l1Cap},
		L2: StoreConfig{Capacity: l2Cap},
	})
	if err != nil {
		t.Fatalf("NewTiered failed: %v", err)
	}
	return tc
}

func TestNewTieredValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  *TieredConfig
	}{
		{"nil config", nil},
		{"l1 larger than l2", &TieredConfig{
			L1: StoreConfig{Capacity: 10},
			L2: StoreConfig{Capacity: 5},
		}},
		{"invalid l1 capacity", &TieredConfig{
			L1: StoreConfig{Capacity: 0},
			L2: StoreConfig{Capacity: 5},
		}},
		{"invalid l2 policy", &TieredConfig{
			L1: StoreConfig{Capacity: 2},
			L2: StoreConfig{Capacity: 5, Policy: "mru"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTiered[string](tt.cfg)
			if !cacheerrors.IsCode(err, cacheerrors.ErrCodeInvalidConfig) {
				t.Errorf("expected INVALID_CONFIG, got %v", err)
			}
		})
	}
}

// L1 holds one entry, L2 holds two. B's insertion
// evicts A from L1; A remains in L2 and is promoted back on access.
func TestTieredPromotion(t *testing.T) {
	tc := mustTiered(t, 1, 2)

	if err := tc.Put("A", "1"); err != nil {
		t.Fatalf("Put(A) failed: %v", err)
	}
	if err := tc.Put("B", "2"); err != nil {
		t.Fatalf("Put(B) failed: %v", err)
	}

	// A was evicted from L1 by B's arrival but survives in L2.
	if _, ok := tc.L1().Get("A"); ok {
		t.Fatal("A still resident in L1, expected it evicted")
	}

	got, ok := tc.Get("A")
	if !ok || got != "1" {
		t.Fatalf("Get(A) = (%q, %v), want (1, true)", got, ok)
	}
	if hits := tc.L2().Stats().Hits; hits != 1 {
		t.Errorf("L2 hits = %d, want 1 (promotion source)", hits)
	}

	l1HitsBefore := tc.L1().Stats().Hits
	if got, ok := tc.Get("A"); !ok || got != "1" {
		t.Fatalf("second Get(A) = (%q, %v), want (1, true)", got, ok)
	}
	if hits := tc.L1().Stats().Hits; hits != l1HitsBefore+1 {
		t.Error("second Get(A) was not an L1 hit; promotion did not happen")
	}
}

func TestTieredWriteThroughSuperset(t *testing.T) {
	tc := mustTiered(t, 2, 8)

	for i := 0; i < 6; i++ {
		if err := tc.Put(fmt.Sprintf("key-%d", i), "v"); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	// Every L1 resident must also be resident in L2.
	for _, key := range tc.L1().Keys() {
		if _, resident := tc.L2().entries[key]; !resident {
			t.Errorf("L1 key %s missing from L2", key)
		}
	}
	if tc.Len() != 6 {
		t.Errorf("Len() = %d, want 6", tc.Len())
	}
}

func TestTieredCombinedStats(t *testing.T) {
	tc := mustTiered(t, 1, 4)

	tc.Put("A", "1")
	tc.Put("B", "2") // evicts A from L1

	tc.Get("B")       // L1 hit
	tc.Get("A")       // L2 hit + promotion
	tc.Get("missing") // combined miss

	stats := tc.TierStats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("combined = %d hits / %d misses, want 2/1", stats.Hits, stats.Misses)
	}
	want := 2.0 / 3.0
	if diff := stats.HitRate - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("combined hit rate = %v, want %v", stats.HitRate, want)
	}
	if stats.L2.Hits != 1 {
		t.Errorf("L2 hits = %d, want 1", stats.L2.Hits)
	}
}

func TestTieredPutTTL(t *testing.T) {
	clock := newFakeClock()
	tc, err := NewTiered[string](&TieredConfig{
		L1: StoreConfig{Capacity: 2, Clock: clock},
		L2: StoreConfig{Capacity: 4, Clock: clock},
	})
	if err != nil {
		t.Fatalf("NewTiered failed: %v", err)
	}

	tc.PutTTL("a", "1", 10*time.Millisecond)
	clock.Advance(20 * time.Millisecond)

	if _, ok := tc.Get("a"); ok {
		t.Error("entry served from a tier after its TTL elapsed")
	}
}

func TestTieredRemoveAndClear(t *testing.T) {
	tc := mustTiered(t, 2, 4)

	tc.Put("a", "1")
	tc.Remove("a")
	tc.Remove("a") // idempotent

	if _, ok := tc.Get("a"); ok {
		t.Error("removed key still resident")
	}

	tc.Put("b", "2")
	tc.Get("b")
	tc.Clear()

	if tc.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", tc.Len())
	}
	stats := tc.TierStats()
	if stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("combined stats after Clear = %+v, want zeroes", stats)
	}
}

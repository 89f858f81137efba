package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheerrors "github.com/cachekit/cachekit/pkg/errors"
	"github.com/cachekit/cachekit/pkg/types"
)

type staticStats struct {
	stats types.CacheStats
}

func (s staticStats) Stats() types.CacheStats { return s.stats }

func TestCollectorExposesRegisteredCaches(t *testing.T) {
	c := NewCollector(&Config{Namespace: "cachekit"})
	require.NoError(t, c.Register("main", staticStats{types.CacheStats{
		Hits:        12,
		Misses:      4,
		Evictions:   2,
		Size:        8,
		Capacity:    16,
		HitRate:     0.75,
		Utilization: 0.5,
	}}))

	expected := `
# HELP cachekit_cache_hits_total Total number of cache hits
# TYPE cachekit_cache_hits_total counter
cachekit_cache_hits_total{cache="main"} 12
# HELP cachekit_cache_misses_total Total number of cache misses
# TYPE cachekit_cache_misses_total counter
cachekit_cache_misses_total{cache="main"} 4
`
	err := testutil.GatherAndCompare(c.registry, strings.NewReader(expected),
		"cachekit_cache_hits_total", "cachekit_cache_misses_total")
	assert.NoError(t, err)
}

func TestCollectorScrapesLiveStats(t *testing.T) {
	c := NewCollector(nil)
	source := &staticStats{}
	require.NoError(t, c.Register("live", source))

	source.stats.Hits = 1
	assert.Equal(t, 1.0, gatherValue(t, c, "cachekit_cache_hits_total"))

	source.stats.Hits = 5
	assert.Equal(t, 5.0, gatherValue(t, c, "cachekit_cache_hits_total"))
}

func TestRegisterDuplicateName(t *testing.T) {
	c := NewCollector(nil)
	require.NoError(t, c.Register("dup", staticStats{}))

	err := c.Register("dup", staticStats{})
	assert.True(t, cacheerrors.IsCode(err, cacheerrors.ErrCodeInvalidConfig))
}

func TestUnregister(t *testing.T) {
	c := NewCollector(nil)
	require.NoError(t, c.Register("gone", staticStats{}))
	c.Unregister("gone")
	c.Unregister("gone") // unknown names are a no-op

	count, err := testutil.GatherAndCount(c.registry)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// gatherValue scrapes the registry and returns the single sample value
// for the named metric family.
func gatherValue(t *testing.T, c *Collector, name string) float64 {
	t.Helper()
	families, err := c.registry.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		require.Len(t, fam.GetMetric(), 1)
		m := fam.GetMetric()[0]
		if m.GetCounter() != nil {
			return m.GetCounter().GetValue()
		}
		return m.GetGauge().GetValue()
	}
	t.Fatalf("metric family %s not found", name)
	return 0
}

// Package metrics exposes cache statistics as Prometheus metrics with an
// optional HTTP exposition endpoint.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cacheerrors "github.com/cachekit/cachekit/pkg/errors"
	"github.com/cachekit/cachekit/pkg/types"
)

// Config represents metrics configuration
type Config struct {
	Enabled   bool   `yaml:"enabled"`
	Port      int    `yaml:"port"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// Collector scrapes every registered cache's Stats() on each Prometheus
// gather. Counters and gauges are emitted as const metrics so the caches
// stay the single source of truth; nothing is double-counted.
type Collector struct {
	mu       sync.RWMutex
	config   *Config
	registry *prometheus.Registry
	sources  map[string]types.Statser

	hitsDesc        *prometheus.Desc
	missesDesc      *prometheus.Desc
	evictionsDesc   *prometheus.Desc
	sizeDesc        *prometheus.Desc
	capacityDesc    *prometheus.Desc
	hitRateDesc     *prometheus.Desc
	utilizationDesc *prometheus.Desc

	// HTTP server for the metrics endpoint
	server *http.Server
}

// NewCollector creates a new metrics collector with its own registry.
func NewCollector(config *Config) *Collector {
	if config == nil {
		config = &Config{
			Enabled:   true,
			Port:      8080,
			Path:      "/metrics",
			Namespace: "cachekit",
		}
	}

	ns := config.Namespace
	labels := []string{"cache"}
	c := &Collector{
		config:   config,
		registry: prometheus.NewRegistry(),
		sources:  make(map[string]types.Statser),

		hitsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(ns, "cache", "hits_total"),
			"Total number of cache hits", labels, nil),
		missesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(ns, "cache", "misses_total"),
			"Total number of cache misses", labels, nil),
		evictionsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(ns, "cache", "evictions_total"),
			"Total number of capacity evictions", labels, nil),
		sizeDesc: prometheus.NewDesc(
			prometheus.BuildFQName(ns, "cache", "entries"),
			"Current number of resident entries", labels, nil),
		capacityDesc: prometheus.NewDesc(
			prometheus.BuildFQName(ns, "cache", "capacity"),
			"Configured maximum number of entries", labels, nil),
		hitRateDesc: prometheus.NewDesc(
			prometheus.BuildFQName(ns, "cache", "hit_rate"),
			"Hits divided by total accesses, zero before any access", labels, nil),
		utilizationDesc: prometheus.NewDesc(
			prometheus.BuildFQName(ns, "cache", "utilization"),
			"Resident entries divided by capacity", labels, nil),
	}

	c.registry.MustRegister(c)
	return c
}

// Register adds a cache under the given name. Registering the same name
// twice is a configuration error.
func (c *Collector) Register(name string, source types.Statser) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.sources[name]; exists {
		return cacheerrors.NewInvalidConfig("cache %q already registered with the collector", name)
	}
	c.sources[name] = source
	return nil
}

// Unregister removes a cache from the collector. Unknown names are a
// no-op.
func (c *Collector) Unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sources, name)
}

// Registry returns the collector's Prometheus registry for embedding in
// an existing exposition setup.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hitsDesc
	ch <- c.missesDesc
	ch <- c.evictionsDesc
	ch <- c.sizeDesc
	ch <- c.capacityDesc
	ch <- c.hitRateDesc
	ch <- c.utilizationDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for name, source := range c.sources {
		stats := source.Stats()
		ch <- prometheus.MustNewConstMetric(c.hitsDesc, prometheus.CounterValue, float64(stats.Hits), name)
		ch <- prometheus.MustNewConstMetric(c.missesDesc, prometheus.CounterValue, float64(stats.Misses), name)
		ch <- prometheus.MustNewConstMetric(c.evictionsDesc, prometheus.CounterValue, float64(stats.Evictions), name)
		ch <- prometheus.MustNewConstMetric(c.sizeDesc, prometheus.GaugeValue, float64(stats.Size), name)
		ch <- prometheus.MustNewConstMetric(c.capacityDesc, prometheus.GaugeValue, float64(stats.Capacity), name)
		ch <- prometheus.MustNewConstMetric(c.hitRateDesc, prometheus.GaugeValue, stats.HitRate, name)
		ch <- prometheus.MustNewConstMetric(c.utilizationDesc, prometheus.GaugeValue, stats.Utilization, name)
	}
}

// Start starts the metrics endpoint server. Disabled collectors are a
// no-op.
func (c *Collector) Start() error {
	if !c.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(c.config.Path, promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	c.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", c.config.Port),
		Handler:           mux,
		ReadHeaderTimeout: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Metrics server error: %v\n", err)
		}
	}()

	return nil
}

// Stop shuts down the metrics endpoint server.
func (c *Collector) Stop(ctx context.Context) error {
	if c.server != nil {
		return c.server.Shutdown(ctx)
	}
	return nil
}

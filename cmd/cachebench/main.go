// cachebench drives a configurable workload against a cachekit store or
// tiered pair and reports the resulting statistics. It doubles as a live
// demo for the metrics endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/cachekit/cachekit/pkg/cache"
	"github.com/cachekit/cachekit/pkg/config"
	"github.com/cachekit/cachekit/pkg/metrics"
	"github.com/cachekit/cachekit/pkg/types"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML configuration file")
		ops        = flag.Int("ops", 100000, "number of operations per worker")
		workers    = flag.Int("workers", 4, "number of concurrent workers")
		keyspace   = flag.Int("keyspace", 5000, "number of distinct keys in the workload")
		writeRatio = flag.Float64("write-ratio", 0.25, "fraction of operations that are writes")
		policy     = flag.String("policy", "", "eviction policy override (lru, lfu, fifo, random, ttl_first)")
		tiered     = flag.Bool("tiered", false, "exercise the two-level cache instead of a flat store")
		seed       = flag.Int64("seed", 1, "workload random seed")
		hold       = flag.Duration("hold", 0, "keep the process (and metrics endpoint) alive after the run")
	)
	flag.Parse()

	cfg := config.NewDefault()
	if *configPath != "" {
		if err := cfg.LoadFromFile(*configPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	cfg.LoadFromEnv()
	if *policy != "" {
		cfg.Cache.EvictionPolicy = *policy
	}
	if *tiered {
		cfg.Tier.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	collector := metrics.NewCollector(&metrics.Config{
		Enabled:   cfg.Metrics.Enabled,
		Port:      cfg.Metrics.Port,
		Path:      cfg.Metrics.Path,
		Namespace: cfg.Metrics.Namespace,
	})
	if err := collector.Start(); err != nil {
		log.Fatalf("start metrics: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		collector.Stop(ctx)
	}()

	var target types.Cache[string]
	if cfg.Tier.Enabled {
		tc, err := cache.NewTiered[string](cfg.TieredConfig())
		if err != nil {
			log.Fatalf("build tiered cache: %v", err)
		}
		defer tc.Close()
		mustRegister(collector, "tiered", tc)
		mustRegister(collector, "l1", tc.L1())
		mustRegister(collector, "l2", tc.L2())
		target = tc
	} else {
		store, err := cache.NewStore[string](cfg.StoreConfig())
		if err != nil {
			log.Fatalf("build store: %v", err)
		}
		defer store.Close()
		mustRegister(collector, "store", store)
		target = store
	}

	start := time.Now()
	run(target, *workers, *ops, *keyspace, *writeRatio, *seed)
	elapsed := time.Since(start)

	total := *workers * *ops
	stats := target.Stats()
	fmt.Printf("completed %d ops in %v (%.0f ops/sec)\n", total, elapsed, float64(total)/elapsed.Seconds())
	fmt.Printf("hits=%d misses=%d evictions=%d hit_rate=%.3f size=%d/%d\n",
		stats.Hits, stats.Misses, stats.Evictions, stats.HitRate, stats.Size, stats.Capacity)

	if *hold > 0 {
		fmt.Printf("holding for %v (metrics on :%d%s)\n", *hold, cfg.Metrics.Port, cfg.Metrics.Path)
		time.Sleep(*hold)
	}
}

func run(target types.Cache[string], workers, ops, keyspace int, writeRatio float64, seed int64) {
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed + int64(w)))
			for i := 0; i < ops; i++ {
				key := fmt.Sprintf("key-%d", rng.Intn(keyspace))
				if rng.Float64() < writeRatio {
					if err := target.Put(key, "payload"); err != nil {
						log.Printf("put %s: %v", key, err)
					}
					continue
				}
				if _, ok := target.Get(key); !ok {
					// Miss path mirrors a read-through caller.
					if err := target.Put(key, "payload"); err != nil {
						log.Printf("fill %s: %v", key, err)
					}
				}
			}
		}(w)
	}
	wg.Wait()
}

func mustRegister(collector *metrics.Collector, name string, source types.Statser) {
	if err := collector.Register(name, source); err != nil {
		fmt.Fprintf(os.Stderr, "register %s: %v\n", name, err)
		os.Exit(1)
	}
}

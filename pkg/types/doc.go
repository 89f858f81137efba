/*
Package types provides the core interfaces, data structures, and type definitions for cachekit.

This package serves as the foundation for the rest of the module, defining the contracts
between components and the data structures shared across the codebase.

# Architecture Overview

cachekit is layered, with well-defined interfaces between components:

	┌─────────────────────────────────────────────┐
	│            Caller / cachebench              │
	└─────────────────────────────────────────────┘
	          │              │             │
	┌─────────┴───┐ ┌────────┴───────┐ ┌───┴─────┐
	│  Memoizer   │ │  Tiered (L1/L2)│ │ Metrics │
	└─────────────┘ └────────────────┘ └─────────┘
	          │              │
	┌─────────┴──────────────┴───────────────────┐
	│                Store (pkg/cache)           │
	│     map + lock + stats + EvictionPolicy    │
	└─────────────────────────────────────────────┘

# Core Interfaces

EvictionPolicy is the victim-selection contract implemented by the LRU,
LFU, FIFO, Random, and TTL-first strategies. Clock abstracts the time
source so expiry can be driven deterministically in tests. Statser is the
read-only statistics contract consumed by the metrics collector.

# Data Structures

CacheStats is the statistics snapshot returned by every cache: raw
hit/miss/eviction counters plus hit rate and utilization, which are
derived at snapshot time and never stored. EntryInfo is the per-entry
metadata view handed to eviction policies.
*/
package types

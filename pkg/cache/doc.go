/*
Package cache provides a bounded, eviction-policy-driven, TTL-aware in-memory cache
with statistics tracking, two-level composition, and function memoization.

# Architecture

	┌─────────────────────────────────────────────┐
	│              Application                    │
	└─────────────────────────────────────────────┘
	        │                  │
	┌───────┴───────┐  ┌───────┴──────────────────┐
	│   Memoizer    │  │        Tiered            │
	│ (fn results)  │  │  ┌──────┐    ┌──────┐   │
	└───────┬───────┘  │  │  L1  │ →  │  L2  │   │
	        │          │  └──────┘    └──────┘   │
	        │          └───────┬──────────────────┘
	┌───────┴──────────────────┴──────────────────┐
	│                  Store                      │
	│   map + mutex + statsTracker + policy       │
	└─────────────────────────────────────────────┘

Store is the engine: a key→entry map guarded by one mutex, a capacity
bound enforced by exactly one eviction per overflowing insert, lazy TTL
expiry on lookup, and hit/miss/eviction accounting. Victim selection is
delegated to an EvictionPolicy (LRU, LFU, FIFO, seedable Random, or
TTL-first), each with deterministic tie-breaks so tests can pin the
victim.

Tiered composes two stores with promote-on-hit and write-through puts:
L2 always holds a superset of L1's keys, so an L1 eviction is never a
data loss.

Memoizer adapts an expensive deterministic function into a cache-backed
callable keyed by a canonical JSON serialization of the input. A bypass
predicate can route individual calls around the cache entirely, and an
opt-in single-flight mode coalesces concurrent misses on one key.

# Concurrency

Every store operation is serialized by the store's mutex, including the
metadata updates a lookup performs. The memoized function itself always
runs outside the lock, so misses on different keys compute concurrently.

# Lifecycle

Stores are explicitly constructed and owned by the caller; there is no
process-wide instance. Construction validates configuration loudly,
runtime lookups never error, and Close stops the optional background
sweeper.
*/
package cache

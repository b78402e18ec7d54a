// Package cachemanager provides a multi-level cache with named strategies,
// rule-based invalidation, scheduled warmup, and built-in health and metrics
// collection.
//
// # Overview
//
// A Manager fronts an ordered list of storage levels: a bounded in-memory
// LRU level (L1) and, when configured, a networked Redis level (L2). Reads
// walk the levels in order and return the first live entry, promoting it
// asynchronously into every faster level. Writes fan out to all levels of
// the strategy in parallel. The cache is a performance layer, not a source
// of truth: every per-operation failure is absorbed into a boolean, none,
// or zero result, so a cache outage costs latency, never correctness.
//
// # Strategies
//
// A strategy names an ordered subset of levels, a TTL per level, a
// compression flag, and the invalidation rules that cover its keys.
// Strategies are registered up front (programmatically or from
// configuration) and referenced by name on each call. Unknown strategy
// names resolve to a safe default (L1 only, five-minute TTL) instead of
// failing the caller.
//
// # Usage
//
//	cfg := config.Load()
//	manager, err := cachemanager.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer manager.Close()
//
//	manager.RegisterStrategy(model.Strategy{
//		Name:   "sessions",
//		Levels: []string{levels.L1, levels.L2},
//		TTL: map[string]time.Duration{
//			levels.L1: 5 * time.Minute,
//			levels.L2: time.Hour,
//		},
//		Compression: true,
//	})
//
//	manager.Set(ctx, "session:42", session, "sessions")
//	if value, ok := manager.Get(ctx, "session:42", "sessions"); ok {
//		// serve from cache
//	}
//
// # Invalidation
//
// Invalidation rules are named predicates over (key, context). Invalidate
// scans every level, applies the predicate, and deletes matches everywhere,
// returning the count of distinct keys removed. Rules are best-effort: an
// unreachable level contributes no candidates and is skipped.
//
//	manager.RegisterRule("user-keys", invalidation.MatchPrefix("user:"))
//	removed := manager.Invalidate(ctx, "user-keys", nil)
//
// # Warmup
//
// Warm tasks carry a loader that fetches the value from its authoritative
// source. The scheduler drains the highest-priority tasks on a fixed
// interval and stores results through the normal write path; duplicate keys
// replace the queued task rather than loading twice. ScheduleRefresh
// re-warms a key on a cron expression.
//
// # Observability
//
// Stats returns per-level hit/miss/set/delete/eviction counters and an
// overall hit rate; the collector also implements prometheus.Collector for
// registries owned by the embedding service. Health reports the latest
// periodic probe (sentinel round trip for L1, ping for L2). On registers
// handlers for hit, miss, set, delete, invalidated, health, and metrics
// events; dispatch is asynchronous and never blocks cache operations.
//
// # Thread Safety
//
// All Manager methods are safe for concurrent use. L1 is guarded by a
// single mutex around O(1) operations; L2 calls are bounded by per-call
// timeouts and a circuit breaker. Background loops (sweep, drain, probe,
// sample) run on their own tickers and stop on Close.
package cachemanager

// Package metrics accumulates per-level and overall cache counters. The
// Collector hands out model.Stats snapshots and doubles as a
// prometheus.Collector so consumers can mount the counters on their own
// registry.
package metrics

import (
	"sync"
	"sync/atomic"

	"cache-manager/model"
)

// levelCounters holds the live counters for one level. Evictions is a
// running total sourced from the level itself, not incremented here.
type levelCounters struct {
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	deletes   atomic.Int64
	failures  atomic.Int64
	evictions atomic.Int64
}

// Collector accumulates cache activity counters. All methods are safe for
// concurrent use; recording against an unknown level registers it on the fly.
type Collector struct {
	mu     sync.RWMutex
	levels map[string]*levelCounters

	lookupHits   atomic.Int64
	lookupMisses atomic.Int64
	operations   atomic.Int64
}

// NewCollector creates a collector pre-registered with the given levels.
func NewCollector(levelNames ...string) *Collector {
	c := &Collector{
		levels: make(map[string]*levelCounters, len(levelNames)),
	}
	for _, name := range levelNames {
		c.levels[name] = &levelCounters{}
	}
	return c
}

// RecordHit counts an entry served by level.
func (c *Collector) RecordHit(level string) {
	c.counters(level).hits.Add(1)
}

// RecordMiss counts a lookup that level could not serve.
func (c *Collector) RecordMiss(level string) {
	c.counters(level).misses.Add(1)
}

// RecordSet counts a successful write on level.
func (c *Collector) RecordSet(level string) {
	c.counters(level).sets.Add(1)
}

// RecordDelete counts a successful delete on level.
func (c *Collector) RecordDelete(level string) {
	c.counters(level).deletes.Add(1)
}

// RecordFailure counts a failed operation on level.
func (c *Collector) RecordFailure(level string) {
	c.counters(level).failures.Add(1)
}

// SetEvictions records the level's running eviction total.
func (c *Collector) SetEvictions(level string, total int64) {
	c.counters(level).evictions.Store(total)
}

// RecordLookup counts the outcome of one full lookup across all levels. A
// lookup that misses every level counts one overall miss, not one per level.
func (c *Collector) RecordLookup(hit bool) {
	if hit {
		c.lookupHits.Add(1)
	} else {
		c.lookupMisses.Add(1)
	}
}

// RecordOperation counts one public cache operation.
func (c *Collector) RecordOperation() {
	c.operations.Add(1)
}

// Snapshot returns a point-in-time copy of all counters. Overall health is
// stamped by the caller, which owns the probe state.
func (c *Collector) Snapshot() model.Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	perLevel := make(map[string]model.LevelStats, len(c.levels))
	for name, lc := range c.levels {
		perLevel[name] = model.LevelStats{
			Hits:      lc.hits.Load(),
			Misses:    lc.misses.Load(),
			Sets:      lc.sets.Load(),
			Deletes:   lc.deletes.Load(),
			Failures:  lc.failures.Load(),
			Evictions: lc.evictions.Load(),
		}
	}

	hits := c.lookupHits.Load()
	misses := c.lookupMisses.Load()

	overall := model.OverallStats{
		Hits:       hits,
		Misses:     misses,
		Operations: c.operations.Load(),
	}
	if total := hits + misses; total > 0 {
		overall.HitRate = float64(hits) / float64(total)
	}

	return model.Stats{
		PerLevel: perLevel,
		Overall:  overall,
	}
}

// counters returns the counter set for level, registering it if needed.
func (c *Collector) counters(level string) *levelCounters {
	c.mu.RLock()
	lc, exists := c.levels[level]
	c.mu.RUnlock()
	if exists {
		return lc
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if lc, exists = c.levels[level]; exists {
		return lc
	}
	lc = &levelCounters{}
	c.levels[level] = lc
	return lc
}

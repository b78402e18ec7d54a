package model

import "time"

// HealthStatus summarizes level liveness across the cache.
type HealthStatus string

const (
	// HealthHealthy means every configured level passed its last probe.
	HealthHealthy HealthStatus = "healthy"
	// HealthDegraded means at least one level failed its last probe while
	// at least one other still passes. The cache keeps serving.
	HealthDegraded HealthStatus = "degraded"
	// HealthCritical means every configured level failed its last probe.
	HealthCritical HealthStatus = "critical"
)

// HealthReport is the outcome of one health probe cycle.
type HealthReport struct {
	Status    HealthStatus    `json:"status"`
	Levels    map[string]bool `json:"levels"`
	CheckedAt time.Time       `json:"checked_at"`
}

// LevelStats holds the operation counters for a single storage level.
type LevelStats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Sets      int64 `json:"sets"`
	Deletes   int64 `json:"deletes"`
	Failures  int64 `json:"failures"`
	Evictions int64 `json:"evictions"`
}

// OverallStats aggregates counters across levels. HitRate is hits over
// hits+misses of full lookups (a lookup that misses every level counts one
// overall miss, not one per level).
type OverallStats struct {
	Hits       int64        `json:"hits"`
	Misses     int64        `json:"misses"`
	HitRate    float64      `json:"hit_rate"`
	Operations int64        `json:"operations"`
	Health     HealthStatus `json:"health"`
}

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	PerLevel map[string]LevelStats `json:"per_level"`
	Overall  OverallStats          `json:"overall"`
}

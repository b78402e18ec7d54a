// Package levels defines the storage tiers the cache manager walks on every
// read and fans out to on every write.
//
// Two implementations ship with the module: Memory, a bounded in-process LRU
// store, and Redis, a networked tier shared between processes. Strategies
// reference levels by their short names ("l1", "l2").
package levels

import (
	"context"
	"time"

	"cache-manager/model"
)

// Level names used in strategies, stats, and health reports.
const (
	L1 = "l1"
	L2 = "l2"
)

// Level is a single cache tier.
//
// Get absorbs the level's own transport failures: a failed lookup is logged
// by the level and reported as a miss, so callers never branch on
// infrastructure errors during reads. Set and Delete return an error so the
// caller can count failures, but those errors are advisory and an operation
// that fails on one level may still succeed on another.
type Level interface {
	// Name returns the level identifier, e.g. "l1".
	Name() string

	// Get retrieves the entry stored under key. Expired entries are
	// treated as absent.
	Get(ctx context.Context, key string) (*model.Entry, bool)

	// Set stores entry under key for the given TTL. A non-positive TTL
	// falls back to the level's configured default; if that is also
	// unset the entry never expires.
	Set(ctx context.Context, key string, entry *model.Entry, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Scan returns the live keys stored under this level that begin
	// with prefix. An empty prefix returns every key.
	Scan(ctx context.Context, prefix string) ([]string, error)

	// Ping reports whether the level is reachable.
	Ping(ctx context.Context) error

	// Close releases the level's resources. Close is idempotent.
	Close() error
}

// EvictionReporter is implemented by levels that evict entries to stay
// within a size bound.
type EvictionReporter interface {
	Evictions() int64
}

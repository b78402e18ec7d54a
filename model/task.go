package model

import (
	"context"
	"time"
)

// Loader produces the value for a cache key, typically by calling the
// authoritative upstream source. Loaders run on the warmup scheduler's
// goroutine and should honor the passed context's deadline.
type Loader func(ctx context.Context) (interface{}, error)

// WarmTask is a pending cache-warming job. Tasks are keyed by Key:
// enqueueing a task for a key that is already pending replaces the prior
// task, so a key is never loaded twice for one drain cycle.
type WarmTask struct {
	Key        string
	Loader     Loader
	Strategy   string
	Priority   int
	EnqueuedAt time.Time
}

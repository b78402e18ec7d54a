// Package warmup loads values into the cache ahead of demand. Callers
// enqueue tasks carrying a loader; a background drain runs a bounded batch
// of the highest-priority tasks every interval and stores the results
// through the manager's normal write path.
package warmup

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"cache-manager/config"
	"cache-manager/internal/common/errors"
	"cache-manager/internal/common/logging"
	"cache-manager/model"
)

const (
	defaultInterval  = 30 * time.Second
	defaultBatchSize = 5
)

// Sink stores a loaded value under a key and strategy. The manager injects
// its Set path here so warmed entries take the same route as direct writes.
type Sink func(ctx context.Context, key string, value interface{}, strategy string) bool

type scheduledRefresh struct {
	schedule cron.Schedule
	task     model.WarmTask
	next     time.Time
}

// Scheduler drains a deduplicated set of warm tasks on a fixed interval.
type Scheduler struct {
	sink      Sink
	interval  time.Duration
	batchSize int
	logger    logging.Logger

	mu        sync.Mutex
	pending   map[string]model.WarmTask
	refreshes []*scheduledRefresh
	running   bool

	stopChan chan struct{}
}

// NewScheduler creates a stopped scheduler. Call Start to begin draining.
func NewScheduler(cfg config.WarmupConfig, sink Sink, logger logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	interval := cfg.Interval()
	if interval <= 0 {
		interval = defaultInterval
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &Scheduler{
		sink:      sink,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
		pending:   make(map[string]model.WarmTask),
		stopChan:  make(chan struct{}),
	}
}

// Start launches the drain loop. Calling Start on a running scheduler is a
// no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	go s.drainLoop()
}

// Stop halts draining. Pending tasks are dropped; a stopped scheduler does
// not accept new tasks.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
}

// Enqueue adds tasks to the pending set, replacing any task already queued
// under the same key. Returns true when the scheduler accepted the tasks.
func (s *Scheduler) Enqueue(tasks ...model.WarmTask) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return false
	}

	now := time.Now()
	for _, task := range tasks {
		if task.Key == "" || task.Loader == nil {
			s.logger.Warn("Dropping invalid warm task",
				logging.String("key", task.Key),
			)
			continue
		}
		if task.EnqueuedAt.IsZero() {
			task.EnqueuedAt = now
		}
		s.pending[task.Key] = task
	}

	return true
}

// ScheduleRefresh re-enqueues task each time the cron expression fires.
// The expression uses the standard five-field form plus descriptors such as
// "@hourly". Firing rides the drain ticker, so actual re-warm times are
// quantized to the drain interval.
func (s *Scheduler) ScheduleRefresh(spec string, task model.WarmTask) error {
	if task.Key == "" || task.Loader == nil {
		return errors.ConfigError("scheduled refresh requires a key and a loader")
	}

	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return errors.ConfigError(fmt.Sprintf("invalid refresh schedule %q: %v", spec, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshes = append(s.refreshes, &scheduledRefresh{
		schedule: schedule,
		task:     task,
		next:     schedule.Next(time.Now()),
	})

	return nil
}

// Pending returns the number of tasks waiting to be drained.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Scheduler) drainLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.drain()
		case <-s.stopChan:
			return
		}
	}
}

// drain runs one tick: fire due refreshes, pop the highest-priority batch,
// then run the loaders without holding the lock.
func (s *Scheduler) drain() {
	now := time.Now()

	s.mu.Lock()
	for _, refresh := range s.refreshes {
		if refresh.next.After(now) {
			continue
		}
		task := refresh.task
		task.EnqueuedAt = now
		s.pending[task.Key] = task
		refresh.next = refresh.schedule.Next(now)
	}
	batch := s.popBatch()
	s.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	for _, task := range batch {
		s.runTask(ctx, task)
	}
}

// popBatch removes and returns up to batchSize tasks, highest priority
// first, ties broken by enqueue time. Caller holds the lock. Tasks leave
// the pending set before their loaders run, so a re-enqueue during a slow
// load is a fresh task rather than a lost one.
func (s *Scheduler) popBatch() []model.WarmTask {
	if len(s.pending) == 0 {
		return nil
	}

	batch := make([]model.WarmTask, 0, len(s.pending))
	for _, task := range s.pending {
		batch = append(batch, task)
	}
	sort.Slice(batch, func(i, j int) bool {
		if batch[i].Priority != batch[j].Priority {
			return batch[i].Priority > batch[j].Priority
		}
		if !batch[i].EnqueuedAt.Equal(batch[j].EnqueuedAt) {
			return batch[i].EnqueuedAt.Before(batch[j].EnqueuedAt)
		}
		return batch[i].Key < batch[j].Key
	})

	if len(batch) > s.batchSize {
		batch = batch[:s.batchSize]
	}
	for _, task := range batch {
		delete(s.pending, task.Key)
	}

	return batch
}

// runTask loads one value and stores it. Failures are logged and the task
// is dropped; retry is the caller's policy, not the scheduler's.
func (s *Scheduler) runTask(ctx context.Context, task model.WarmTask) {
	value, err := task.Loader(ctx)
	if err != nil {
		s.logger.Warn("Warm task loader failed",
			logging.String("key", task.Key),
			logging.String("strategy", task.Strategy),
			logging.Err(err),
		)
		return
	}

	if !s.sink(ctx, task.Key, value, task.Strategy) {
		s.logger.Warn("Warm task store failed on every level",
			logging.String("key", task.Key),
			logging.String("strategy", task.Strategy),
		)
		return
	}

	s.logger.Debug("Warmed cache entry",
		logging.String("key", task.Key),
		logging.String("strategy", task.Strategy),
	)
}

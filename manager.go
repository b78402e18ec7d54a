package cachemanager

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"cache-manager/config"
	"cache-manager/internal/common/errors"
	"cache-manager/internal/common/logging"
	"cache-manager/internal/common/registry"
	"cache-manager/invalidation"
	"cache-manager/levels"
	"cache-manager/metrics"
	"cache-manager/model"
	"cache-manager/serializer"
	"cache-manager/warmup"
)

// Manager composes the storage levels, strategy registry, invalidation
// engine, warmup scheduler, and health/metrics collection behind the public
// cache API. Every per-operation failure is absorbed into a boolean, none,
// or zero return: the cache trades latency for availability, never the
// other way around.
type Manager struct {
	cfg    *config.Config
	logger logging.Logger

	levels      []levels.Level
	levelByName map[string]levels.Level

	serializer      *serializer.Serializer
	strategies      *registry.Registry[model.Strategy]
	defaultStrategy model.Strategy
	rules           *invalidation.Engine
	scheduler       *warmup.Scheduler
	collector       *metrics.Collector
	prober          *prober
	events          *dispatcher

	state     atomic.Int32
	stopChan  chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New builds a manager from configuration: the in-memory L1 always, and a
// Redis L2 when cfg.Redis.Address is set. A nil cfg uses the defaults.
func New(cfg *config.Config) (*Manager, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigError(err.Error())
	}

	logger := newLogger(cfg.LogLevel)

	lvls := []levels.Level{levels.NewMemory(cfg.Memory, logger)}
	if cfg.Redis.Enabled() {
		lvls = append(lvls, levels.NewRedis(cfg.Redis, logger))
	}

	return assemble(cfg, logger, lvls)
}

// NewWithLevels builds a manager over caller-supplied levels in lookup
// order, in place of the built-in L1/L2 pair. Strategies are validated
// against the given level names.
func NewWithLevels(cfg *config.Config, lvls ...levels.Level) (*Manager, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigError(err.Error())
	}

	return assemble(cfg, newLogger(cfg.LogLevel), lvls)
}

func assemble(cfg *config.Config, logger logging.Logger, lvls []levels.Level) (*Manager, error) {
	m := &Manager{
		cfg:      cfg,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
	m.state.Store(int32(StateInitializing))

	// Construction owns the levels from here; a failed build must not leak
	// their background goroutines.
	fail := func(err error) (*Manager, error) {
		m.state.Store(int32(StateFailed))
		for _, lvl := range lvls {
			lvl.Close()
		}
		return nil, err
	}

	if len(lvls) == 0 {
		return fail(errors.ConfigError("cache manager needs at least one level"))
	}

	m.levelByName = make(map[string]levels.Level, len(lvls))
	names := make([]string, 0, len(lvls))
	for _, lvl := range lvls {
		name := lvl.Name()
		if name == "" {
			return fail(errors.ConfigError("level names cannot be empty"))
		}
		if _, dup := m.levelByName[name]; dup {
			return fail(errors.ConfigError(fmt.Sprintf("duplicate level name %q", name)))
		}
		m.levelByName[name] = lvl
		names = append(names, name)
	}
	m.levels = lvls

	m.serializer = serializer.New(cfg.Serializer.CompressionThreshold)
	m.collector = metrics.NewCollector(names...)
	m.strategies = registry.New[model.Strategy]("strategy")
	m.defaultStrategy = buildDefaultStrategy(names[0])
	m.rules = invalidation.NewEngine(lvls, logger)
	m.events = newDispatcher()

	for name, sc := range cfg.Strategies {
		if err := m.RegisterStrategy(sc.ToStrategy(name)); err != nil {
			return fail(err)
		}
	}

	m.scheduler = warmup.NewScheduler(cfg.Warmup, m.warmValue, logger)
	m.scheduler.Start()

	m.prober = newProber(lvls, cfg.Health.Interval(), logger, func(report model.HealthReport) {
		m.events.emit(model.Event{Type: model.EventHealth, Health: &report})
	})
	m.prober.start()

	go m.metricsLoop(cfg.Metrics.Interval())

	m.state.Store(int32(StateReady))
	m.logger.Info("Cache manager ready",
		logging.Strings("levels", names),
		logging.Int("strategies", m.strategies.Count()),
	)

	return m, nil
}

func newLogger(level string) logging.Logger {
	logCfg := logging.DefaultLogConfig()
	logCfg.Level = logging.ParseLevel(level)

	logger, err := logging.NewZapLogger(logCfg)
	if err != nil {
		return logging.GetGlobalLogger()
	}
	return logger
}

// Get walks the strategy's levels in order and returns the first live
// value. A hit found below the fastest level is promoted asynchronously;
// the caller never waits for promotion.
func (m *Manager) Get(ctx context.Context, key, strategy string) (interface{}, bool) {
	m.collector.RecordOperation()
	strat := m.resolveStrategy(strategy)

	for i, name := range strat.Levels {
		lvl, ok := m.levelByName[name]
		if !ok {
			continue
		}

		entry, found := lvl.Get(ctx, key)
		if !found {
			m.collector.RecordMiss(name)
			continue
		}

		value, err := m.serializer.Deserialize(entry)
		if err != nil {
			m.collector.RecordFailure(name)
			m.logger.Warn("Dropping undecodable cache entry",
				logging.String("key", key),
				logging.String("level", name),
				logging.Err(err),
			)
			break
		}

		m.collector.RecordHit(name)
		m.collector.RecordLookup(true)

		if i > 0 {
			go m.promote(key, entry, strat, i)
		}

		m.events.emit(model.Event{
			Type:     model.EventHit,
			Key:      key,
			Level:    name,
			Strategy: strat.Name,
		})

		return value, true
	}

	m.collector.RecordLookup(false)
	m.events.emit(model.Event{Type: model.EventMiss, Key: key, Strategy: strat.Name})

	return nil, false
}

// promote copies a hit into every faster level, nearest the hit first, so
// the next lookup for the key is served earlier. The raw entry is reused
// as-is; each target stamps its own TTL from the strategy.
func (m *Manager) promote(key string, entry *model.Entry, strat model.Strategy, hitIdx int) {
	ctx := context.Background()
	for i := hitIdx - 1; i >= 0; i-- {
		name := strat.Levels[i]
		lvl, ok := m.levelByName[name]
		if !ok {
			continue
		}

		if err := lvl.Set(ctx, key, entry, strat.LevelTTL(name)); err != nil {
			m.collector.RecordFailure(name)
			m.logger.Warn("Promotion into level failed",
				logging.String("key", key),
				logging.String("level", name),
				logging.Err(err),
			)
			continue
		}
		m.collector.RecordSet(name)
	}
}

// Set writes the value to every level of the strategy with the strategy's
// per-level TTLs.
func (m *Manager) Set(ctx context.Context, key string, value interface{}, strategy string) bool {
	return m.SetWithTTL(ctx, key, value, strategy, 0)
}

// SetWithTTL writes to every level of the strategy in parallel. A positive
// ttl overrides the strategy's per-level TTLs. Returns true when at least
// one level accepted the write; partial failures are logged and counted,
// never escalated.
func (m *Manager) SetWithTTL(ctx context.Context, key string, value interface{}, strategy string, ttl time.Duration) bool {
	m.collector.RecordOperation()
	strat := m.resolveStrategy(strategy)

	entry, err := m.serializer.Serialize(value, strat.Compression)
	if err != nil {
		m.logger.Warn("Failed to encode value for caching",
			logging.String("key", key),
			logging.Err(err),
		)
		return false
	}

	var wrote atomic.Int32
	var wg sync.WaitGroup
	for _, name := range strat.Levels {
		lvl, ok := m.levelByName[name]
		if !ok {
			continue
		}

		levelTTL := ttl
		if levelTTL <= 0 {
			levelTTL = strat.LevelTTL(name)
		}

		wg.Add(1)
		go func(name string, lvl levels.Level, d time.Duration) {
			defer wg.Done()
			if err := lvl.Set(ctx, key, entry, d); err != nil {
				m.collector.RecordFailure(name)
				m.logger.Warn("Level rejected cache write",
					logging.String("key", key),
					logging.String("level", name),
					logging.Err(err),
				)
				return
			}
			m.collector.RecordSet(name)
			wrote.Add(1)
		}(name, lvl, levelTTL)
	}
	wg.Wait()

	if wrote.Load() == 0 {
		return false
	}

	m.events.emit(model.Event{
		Type:     model.EventSet,
		Key:      key,
		Strategy: strat.Name,
	})

	return true
}

// Delete removes the key from every level of the manager, not just one
// strategy's levels, so no stale copy survives anywhere. Returns true when
// any level deleted.
func (m *Manager) Delete(ctx context.Context, key string) bool {
	m.collector.RecordOperation()

	var deleted atomic.Int32
	var wg sync.WaitGroup
	for _, lvl := range m.levels {
		wg.Add(1)
		go func(lvl levels.Level) {
			defer wg.Done()
			if err := lvl.Delete(ctx, key); err != nil {
				m.collector.RecordFailure(lvl.Name())
				m.logger.Warn("Level rejected cache delete",
					logging.String("key", key),
					logging.String("level", lvl.Name()),
					logging.Err(err),
				)
				return
			}
			m.collector.RecordDelete(lvl.Name())
			deleted.Add(1)
		}(lvl)
	}
	wg.Wait()

	if deleted.Load() == 0 {
		return false
	}

	m.events.emit(model.Event{Type: model.EventDelete, Key: key})

	return true
}

// Invalidate applies a named invalidation rule across every level and
// returns the count of distinct keys removed.
func (m *Manager) Invalidate(ctx context.Context, rule string, ruleCtx map[string]interface{}) int {
	m.collector.RecordOperation()
	count := m.rules.Invalidate(ctx, rule, ruleCtx)

	m.events.emit(model.Event{
		Type:  model.EventInvalidated,
		Rule:  rule,
		Count: count,
	})

	return count
}

// Warm queues tasks for background loading. Returns true when the
// scheduler accepted them.
func (m *Manager) Warm(tasks ...model.WarmTask) bool {
	return m.scheduler.Enqueue(tasks...)
}

// ScheduleRefresh re-warms a key each time the cron expression fires.
func (m *Manager) ScheduleRefresh(spec string, task model.WarmTask) error {
	return m.scheduler.ScheduleRefresh(spec, task)
}

// RegisterRule names an invalidation predicate for Invalidate calls and
// strategy rule lists.
func (m *Manager) RegisterRule(name string, p invalidation.Predicate) error {
	return m.rules.Register(name, p)
}

// warmValue is the scheduler's sink: warmed values take the normal write
// path under the task's strategy.
func (m *Manager) warmValue(ctx context.Context, key string, value interface{}, strategy string) bool {
	return m.SetWithTTL(ctx, key, value, strategy, 0)
}

// Stats returns a snapshot of per-level counters and the overall hit rate,
// stamped with the current health status.
func (m *Manager) Stats() model.Stats {
	m.syncEvictions()
	stats := m.collector.Snapshot()
	stats.Overall.Health = m.prober.report().Status
	return stats
}

func (m *Manager) syncEvictions() {
	for _, lvl := range m.levels {
		if reporter, ok := lvl.(levels.EvictionReporter); ok {
			m.collector.SetEvictions(lvl.Name(), reporter.Evictions())
		}
	}
}

// Health returns the most recent probe result.
func (m *Manager) Health() model.HealthReport {
	return m.prober.report()
}

// On registers a handler for a cache event type. Dispatch is asynchronous;
// handlers for one event run sequentially on a shared goroutine.
func (m *Manager) On(event model.EventType, h model.Handler) {
	m.events.on(event, h)
}

// State reports where the manager is in its lifecycle.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Close stops the background loops and closes every level. Safe to call
// more than once; calls after the first return the first close error.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.scheduler.Stop()
		m.prober.stop()

		for _, lvl := range m.levels {
			if err := lvl.Close(); err != nil {
				m.logger.Warn("Level close failed",
					logging.String("level", lvl.Name()),
					logging.Err(err),
				)
				if m.closeErr == nil {
					m.closeErr = err
				}
			}
		}

		m.logger.Info("Cache manager closed")
	})

	return m.closeErr
}

func (m *Manager) metricsLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats := m.Stats()
			m.events.emit(model.Event{Type: model.EventMetrics, Stats: &stats})
		case <-m.stopChan:
			return
		}
	}
}

package cachemanager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cache-manager/internal/common/logging"
	"cache-manager/levels"
	"cache-manager/model"
)

// healthProbeKeyPrefix namespaces the sentinel keys so they never collide
// with caller data.
const healthProbeKeyPrefix = "health:probe:"

// prober drives the periodic liveness checks. The in-process level is
// probed with a write/read/delete round trip (its Ping cannot fail);
// networked levels are probed with Ping, which reports immediately while
// their circuit breaker is open.
type prober struct {
	levels   []levels.Level
	interval time.Duration
	logger   logging.Logger
	onReport func(model.HealthReport)

	mu     sync.RWMutex
	latest model.HealthReport

	stopChan chan struct{}
}

func newProber(lvls []levels.Level, interval time.Duration, logger logging.Logger, onReport func(model.HealthReport)) *prober {
	if interval <= 0 {
		interval = 15 * time.Second
	}

	return &prober{
		levels:   lvls,
		interval: interval,
		logger:   logger,
		onReport: onReport,
		stopChan: make(chan struct{}),
	}
}

// start runs one probe synchronously so the first report is available
// immediately, then continues on the ticker.
func (p *prober) start() {
	p.runProbe()
	go p.loop()
}

func (p *prober) stop() {
	select {
	case <-p.stopChan:
	default:
		close(p.stopChan)
	}
}

// report returns the most recent probe result.
func (p *prober) report() model.HealthReport {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

func (p *prober) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.runProbe()
		case <-p.stopChan:
			return
		}
	}
}

func (p *prober) runProbe() {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()
	p.probe(ctx)
}

// probe checks every level, stores the report, and hands it to the
// manager's callback.
func (p *prober) probe(ctx context.Context) model.HealthReport {
	levelsUp := make(map[string]bool, len(p.levels))
	up := 0
	for _, lvl := range p.levels {
		ok := p.check(ctx, lvl)
		levelsUp[lvl.Name()] = ok
		if ok {
			up++
		}
	}

	status := model.HealthHealthy
	switch {
	case up == 0:
		status = model.HealthCritical
	case up < len(p.levels):
		status = model.HealthDegraded
	}

	report := model.HealthReport{
		Status:    status,
		Levels:    levelsUp,
		CheckedAt: time.Now(),
	}

	p.mu.Lock()
	previous := p.latest.Status
	p.latest = report
	p.mu.Unlock()

	if previous != "" && previous != status {
		p.logger.Info("Cache health changed",
			logging.String("from", string(previous)),
			logging.String("to", string(status)),
		)
	}

	if p.onReport != nil {
		p.onReport(report)
	}

	return report
}

func (p *prober) check(ctx context.Context, lvl levels.Level) bool {
	var err error
	if lvl.Name() == levels.L1 {
		err = p.sentinelRoundTrip(ctx, lvl)
	} else {
		err = lvl.Ping(ctx)
	}

	if err != nil {
		p.logger.Warn("Level failed health probe",
			logging.String("level", lvl.Name()),
			logging.Err(err),
		)
		return false
	}

	return true
}

func (p *prober) sentinelRoundTrip(ctx context.Context, lvl levels.Level) error {
	key := healthProbeKeyPrefix + lvl.Name()
	entry := &model.Entry{Payload: []byte(`"ok"`), CreatedAt: time.Now()}

	if err := lvl.Set(ctx, key, entry, time.Minute); err != nil {
		return err
	}
	if _, ok := lvl.Get(ctx, key); !ok {
		return fmt.Errorf("sentinel written to %s was not readable", lvl.Name())
	}

	return lvl.Delete(ctx, key)
}

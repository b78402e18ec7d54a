package cachemanager

import (
	"fmt"
	"time"

	"cache-manager/internal/common/errors"
	"cache-manager/internal/common/logging"
	"cache-manager/model"
)

// State identifies where the manager is in its lifecycle.
type State int32

const (
	// StateUninitialized is the zero state before New runs.
	StateUninitialized State = iota
	// StateInitializing covers level construction and strategy registration.
	StateInitializing
	// StateReady means the manager is serving. Transient level outages keep
	// the manager Ready with degraded health.
	StateReady
	// StateFailed means construction hit a configuration error.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const defaultStrategyTTL = 300 * time.Second

// RegisterStrategy validates and stores a strategy. The registry keeps a
// copy; re-registering a name replaces the previous strategy atomically.
func (m *Manager) RegisterStrategy(s model.Strategy) error {
	if s.Name == "" {
		return errors.ConfigError("strategy name cannot be empty")
	}
	if len(s.Levels) == 0 {
		return errors.ConfigError(fmt.Sprintf("strategy %q must list at least one level", s.Name))
	}

	for _, name := range s.Levels {
		if _, ok := m.levelByName[name]; !ok {
			return errors.ConfigError(fmt.Sprintf("strategy %q references unknown level %q", s.Name, name))
		}
		if s.LevelTTL(name) <= 0 {
			return errors.ConfigError(fmt.Sprintf("strategy %q needs a positive TTL for level %q", s.Name, name))
		}
	}

	m.strategies.Register(s.Name, s.Clone())
	return nil
}

// resolveStrategy maps a name to a registered strategy. Unknown or empty
// names fall back to the built-in default so a misconfigured caller is
// served rather than blocked.
func (m *Manager) resolveStrategy(name string) model.Strategy {
	if name == "" {
		return m.defaultStrategy
	}

	s, err := m.strategies.Get(name)
	if err != nil {
		m.logger.Debug("Unknown strategy, using default",
			logging.String("strategy", name),
		)
		return m.defaultStrategy
	}

	return s
}

// buildDefaultStrategy targets the fastest configured level with a 300s
// TTL. With the built-in levels that is L1; injected levels fall back to
// whichever was listed first.
func buildDefaultStrategy(first string) model.Strategy {
	return model.Strategy{
		Name:   "default",
		Levels: []string{first},
		TTL:    map[string]time.Duration{first: defaultStrategyTTL},
	}
}

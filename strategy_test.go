package cachemanager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cache-manager/config"
	"cache-manager/internal/common/errors"
	"cache-manager/internal/testutil"
	"cache-manager/levels"
	"cache-manager/model"
)

func newStrategyTestManager(t *testing.T) *Manager {
	t.Helper()

	m, err := NewWithLevels(testConfig(),
		testutil.NewFakeLevel(levels.L1),
		testutil.NewFakeLevel(levels.L2),
	)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	return m
}

func TestRegisterStrategy_Validation(t *testing.T) {
	m := newStrategyTestManager(t)

	valid := model.Strategy{
		Name:   "sessions",
		Levels: []string{levels.L1, levels.L2},
		TTL: map[string]time.Duration{
			levels.L1: 5 * time.Minute,
			levels.L2: time.Hour,
		},
	}
	require.NoError(t, m.RegisterStrategy(valid))

	tests := []struct {
		name     string
		strategy model.Strategy
	}{
		{
			name:     "empty name",
			strategy: model.Strategy{Levels: []string{levels.L1}, TTL: map[string]time.Duration{levels.L1: time.Minute}},
		},
		{
			name:     "no levels",
			strategy: model.Strategy{Name: "empty"},
		},
		{
			name: "unknown level",
			strategy: model.Strategy{
				Name:   "bad-level",
				Levels: []string{"l9"},
				TTL:    map[string]time.Duration{"l9": time.Minute},
			},
		},
		{
			name: "missing ttl",
			strategy: model.Strategy{
				Name:   "no-ttl",
				Levels: []string{levels.L1, levels.L2},
				TTL:    map[string]time.Duration{levels.L1: time.Minute},
			},
		},
		{
			name: "non-positive ttl",
			strategy: model.Strategy{
				Name:   "zero-ttl",
				Levels: []string{levels.L1},
				TTL:    map[string]time.Duration{levels.L1: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.RegisterStrategy(tt.strategy)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
		})
	}
}

func TestRegisterStrategy_ReplaceAndIsolation(t *testing.T) {
	m := newStrategyTestManager(t)

	original := model.Strategy{
		Name:   "feed",
		Levels: []string{levels.L1},
		TTL:    map[string]time.Duration{levels.L1: time.Minute},
	}
	require.NoError(t, m.RegisterStrategy(original))

	// The registry stores a copy; mutating the caller's value afterwards
	// must not change the registered strategy.
	original.Levels[0] = "poisoned"
	resolved := m.resolveStrategy("feed")
	assert.Equal(t, []string{levels.L1}, resolved.Levels)

	replacement := model.Strategy{
		Name:   "feed",
		Levels: []string{levels.L1, levels.L2},
		TTL: map[string]time.Duration{
			levels.L1: time.Minute,
			levels.L2: time.Hour,
		},
		Compression: true,
	}
	require.NoError(t, m.RegisterStrategy(replacement))

	resolved = m.resolveStrategy("feed")
	assert.Equal(t, []string{levels.L1, levels.L2}, resolved.Levels)
	assert.True(t, resolved.Compression)
}

func TestResolveStrategy_Default(t *testing.T) {
	m := newStrategyTestManager(t)

	for _, name := range []string{"", "never-registered"} {
		resolved := m.resolveStrategy(name)
		assert.Equal(t, []string{levels.L1}, resolved.Levels)
		assert.Equal(t, 300*time.Second, resolved.LevelTTL(levels.L1))
		assert.False(t, resolved.Compression)
	}
}

func TestDefaultStrategy_FollowsFirstLevel(t *testing.T) {
	m, err := NewWithLevels(testConfig(),
		testutil.NewFakeLevel("fast"),
		testutil.NewFakeLevel("slow"),
	)
	require.NoError(t, err)
	defer m.Close()

	resolved := m.resolveStrategy("")
	assert.Equal(t, []string{"fast"}, resolved.Levels)
}

func TestConfigStrategies_RegisteredAtBuild(t *testing.T) {
	cfg := testConfig()
	cfg.Strategies = map[string]config.StrategyConfig{
		"catalog": {
			Levels:     []string{levels.L1},
			TTLSeconds: map[string]int{levels.L1: 120},
		},
	}

	m, err := NewWithLevels(cfg, testutil.NewFakeLevel(levels.L1))
	require.NoError(t, err)
	defer m.Close()

	resolved := m.resolveStrategy("catalog")
	assert.Equal(t, "catalog", resolved.Name)
	assert.Equal(t, 2*time.Minute, resolved.LevelTTL(levels.L1))
}

func TestConfigStrategies_InvalidFailsBuild(t *testing.T) {
	cfg := testConfig()
	cfg.Strategies = map[string]config.StrategyConfig{
		"broken": {
			Levels:     []string{"l9"},
			TTLSeconds: map[string]int{"l9": 60},
		},
	}

	lvl := testutil.NewFakeLevel(levels.L1)
	m, err := NewWithLevels(cfg, lvl)
	require.Error(t, err)
	assert.Nil(t, m)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
	assert.True(t, lvl.Closed(), "failed build must close the levels it was handed")
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUninitialized, "uninitialized"},
		{StateInitializing, "initializing"},
		{StateReady, "ready"},
		{StateFailed, "failed"},
		{State(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

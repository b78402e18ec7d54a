// Package config provides configuration management for the cache manager.
// It handles loading configuration from environment variables with sensible
// defaults, loading a full configuration tree (including strategies) from a
// YAML file, and validating the result so the manager starts safely.
//
// Environment Variables:
//
// Application Settings:
//   - CACHE_LOG_LEVEL: Logging level (default: info)
//
// Memory Level (L1):
//   - CACHE_MEMORY_MAX_KEYS: Maximum number of keys held in memory (default: 1000)
//   - CACHE_MEMORY_DEFAULT_TTL: Default entry TTL in seconds (default: 300)
//   - CACHE_MEMORY_CHECK_PERIOD: Expired-entry sweep period in seconds (default: 60)
//
// Remote Level (L2, Redis):
//   - CACHE_REDIS_ADDRESS: Redis server address; leave unset to run without L2
//   - CACHE_REDIS_PASSWORD: Redis password
//   - CACHE_REDIS_DB: Redis database number 0-15 (default: 0)
//   - CACHE_REDIS_POOL_SIZE: Redis connection pool size (default: 10)
//   - CACHE_REDIS_TIMEOUT_MS: Per-operation timeout in milliseconds (default: 5000)
//   - CACHE_REDIS_KEY_PREFIX: Prefix for all cache keys in Redis (default: "cache:")
//   - CACHE_REDIS_DEFAULT_TTL: Default entry TTL in seconds (default: 600)
//
// Serialization:
//   - CACHE_COMPRESSION_THRESHOLD: Payload size in bytes above which
//     compression-enabled strategies compress (default: 1024)
//
// Background Work:
//   - CACHE_WARMUP_INTERVAL: Warmup queue drain period in seconds (default: 30)
//   - CACHE_WARMUP_BATCH_SIZE: Maximum tasks loaded per drain tick (default: 5)
//   - CACHE_HEALTH_CHECK_INTERVAL: Health probe period in seconds (default: 15)
//   - CACHE_METRICS_INTERVAL: Metrics sampling period in seconds (default: 60)
//
// Strategies cannot be expressed through environment variables; they are
// registered programmatically or loaded from a YAML file via LoadFile.
//
// Example usage:
//
//	// Load configuration from environment
//	cfg := config.Load()
//
//	// Validate configuration
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid configuration: %v", err)
//	}
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"cache-manager/model"
)

// MemoryConfig holds the settings for the in-process L1 level.
type MemoryConfig struct {
	MaxKeys            int `yaml:"max_keys"`
	DefaultTTLSeconds  int `yaml:"default_ttl_seconds"`
	CheckPeriodSeconds int `yaml:"check_period_seconds"`
}

// DefaultTTL returns the configured default TTL as a duration.
func (m MemoryConfig) DefaultTTL() time.Duration {
	return time.Duration(m.DefaultTTLSeconds) * time.Second
}

// CheckPeriod returns the expired-entry sweep period as a duration.
func (m MemoryConfig) CheckPeriod() time.Duration {
	return time.Duration(m.CheckPeriodSeconds) * time.Second
}

// RedisConfig holds the settings for the networked L2 level. An empty
// Address means the manager runs with L1 only.
type RedisConfig struct {
	Address           string `yaml:"address"`
	Password          string `yaml:"password"`
	DB                int    `yaml:"db"`
	PoolSize          int    `yaml:"pool_size"`
	TimeoutMS         int    `yaml:"timeout_ms"`
	KeyPrefix         string `yaml:"key_prefix"`
	DefaultTTLSeconds int    `yaml:"default_ttl_seconds"`
}

// Enabled reports whether an L2 level should be constructed.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// Timeout returns the per-operation timeout as a duration.
func (r RedisConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutMS) * time.Millisecond
}

// DefaultTTL returns the configured default TTL as a duration.
func (r RedisConfig) DefaultTTL() time.Duration {
	return time.Duration(r.DefaultTTLSeconds) * time.Second
}

// SerializerConfig holds payload encoding settings.
type SerializerConfig struct {
	CompressionThreshold int `yaml:"compression_threshold"`
}

// WarmupConfig holds warmup scheduler settings.
type WarmupConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	BatchSize       int `yaml:"batch_size"`
}

// Interval returns the drain period as a duration.
func (w WarmupConfig) Interval() time.Duration {
	return time.Duration(w.IntervalSeconds) * time.Second
}

// HealthConfig holds health probe settings.
type HealthConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

// Interval returns the probe period as a duration.
func (h HealthConfig) Interval() time.Duration {
	return time.Duration(h.IntervalSeconds) * time.Second
}

// MetricsConfig holds metrics sampling settings.
type MetricsConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

// Interval returns the sampling period as a duration.
func (m MetricsConfig) Interval() time.Duration {
	return time.Duration(m.IntervalSeconds) * time.Second
}

// StrategyConfig is the file representation of a caching strategy. TTLs are
// expressed in seconds, keyed by level name.
type StrategyConfig struct {
	Levels            []string       `yaml:"levels"`
	TTLSeconds        map[string]int `yaml:"ttl_seconds"`
	Compression       bool           `yaml:"compression"`
	Warming           bool           `yaml:"warming"`
	InvalidationRules []string       `yaml:"invalidation_rules"`
}

// ToStrategy converts the file representation into the runtime strategy
// registered under the given name.
func (sc StrategyConfig) ToStrategy(name string) model.Strategy {
	s := model.Strategy{
		Name:        name,
		Compression: sc.Compression,
		Warming:     sc.Warming,
	}
	if len(sc.Levels) > 0 {
		s.Levels = make([]string, len(sc.Levels))
		copy(s.Levels, sc.Levels)
	}
	if len(sc.TTLSeconds) > 0 {
		s.TTL = make(map[string]time.Duration, len(sc.TTLSeconds))
		for level, seconds := range sc.TTLSeconds {
			s.TTL[level] = time.Duration(seconds) * time.Second
		}
	}
	if len(sc.InvalidationRules) > 0 {
		s.InvalidationRules = make([]string, len(sc.InvalidationRules))
		copy(s.InvalidationRules, sc.InvalidationRules)
	}
	return s
}

// Config holds all configuration values for the cache manager.
//
// The configuration is loaded using Load (environment) or LoadFile (YAML)
// and should be validated using the Validate method before use.
type Config struct {
	LogLevel   string                    `yaml:"log_level"`
	Memory     MemoryConfig              `yaml:"memory"`
	Redis      RedisConfig               `yaml:"redis"`
	Serializer SerializerConfig          `yaml:"serializer"`
	Warmup     WarmupConfig              `yaml:"warmup"`
	Health     HealthConfig              `yaml:"health"`
	Metrics    MetricsConfig             `yaml:"metrics"`
	Strategies map[string]StrategyConfig `yaml:"strategies"`
}

// Default returns a configuration populated with the documented defaults
// and no L2 level.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Memory: MemoryConfig{
			MaxKeys:            1000,
			DefaultTTLSeconds:  300,
			CheckPeriodSeconds: 60,
		},
		Redis: RedisConfig{
			Address:           "",
			Password:          "",
			DB:                0,
			PoolSize:          10,
			TimeoutMS:         5000,
			KeyPrefix:         "cache:",
			DefaultTTLSeconds: 600,
		},
		Serializer: SerializerConfig{
			CompressionThreshold: 1024,
		},
		Warmup: WarmupConfig{
			IntervalSeconds: 30,
			BatchSize:       5,
		},
		Health: HealthConfig{
			IntervalSeconds: 15,
		},
		Metrics: MetricsConfig{
			IntervalSeconds: 60,
		},
		Strategies: map[string]StrategyConfig{},
	}
}

// Load creates a new Config instance with values loaded from environment
// variables. A .env file in the working directory is loaded first when
// present. If an environment variable is not set, the corresponding default
// value is used.
//
// This function does not validate the configuration - call Validate() on the
// returned Config to ensure all values are valid.
func Load() *Config {
	_ = godotenv.Load()

	cfg := Default()

	cfg.LogLevel = getEnv("CACHE_LOG_LEVEL", cfg.LogLevel)

	cfg.Memory.MaxKeys = getIntEnv("CACHE_MEMORY_MAX_KEYS", cfg.Memory.MaxKeys)
	cfg.Memory.DefaultTTLSeconds = getIntEnv("CACHE_MEMORY_DEFAULT_TTL", cfg.Memory.DefaultTTLSeconds)
	cfg.Memory.CheckPeriodSeconds = getIntEnv("CACHE_MEMORY_CHECK_PERIOD", cfg.Memory.CheckPeriodSeconds)

	cfg.Redis.Address = getEnv("CACHE_REDIS_ADDRESS", cfg.Redis.Address)
	cfg.Redis.Password = getEnv("CACHE_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getIntEnv("CACHE_REDIS_DB", cfg.Redis.DB)
	cfg.Redis.PoolSize = getIntEnv("CACHE_REDIS_POOL_SIZE", cfg.Redis.PoolSize)
	cfg.Redis.TimeoutMS = getIntEnv("CACHE_REDIS_TIMEOUT_MS", cfg.Redis.TimeoutMS)
	cfg.Redis.KeyPrefix = getEnv("CACHE_REDIS_KEY_PREFIX", cfg.Redis.KeyPrefix)
	cfg.Redis.DefaultTTLSeconds = getIntEnv("CACHE_REDIS_DEFAULT_TTL", cfg.Redis.DefaultTTLSeconds)

	cfg.Serializer.CompressionThreshold = getIntEnv("CACHE_COMPRESSION_THRESHOLD", cfg.Serializer.CompressionThreshold)

	cfg.Warmup.IntervalSeconds = getIntEnv("CACHE_WARMUP_INTERVAL", cfg.Warmup.IntervalSeconds)
	cfg.Warmup.BatchSize = getIntEnv("CACHE_WARMUP_BATCH_SIZE", cfg.Warmup.BatchSize)

	cfg.Health.IntervalSeconds = getIntEnv("CACHE_HEALTH_CHECK_INTERVAL", cfg.Health.IntervalSeconds)
	cfg.Metrics.IntervalSeconds = getIntEnv("CACHE_METRICS_INTERVAL", cfg.Metrics.IntervalSeconds)

	return cfg
}

// LoadFile reads a YAML configuration file. Settings absent from the file
// keep their defaults; the strategies map is loaded as-is.
//
// Like Load, LoadFile does not validate - call Validate() on the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable value or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves an integer environment variable value or returns a
// default value if not set or not parseable.
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Validate performs comprehensive validation on the configuration to ensure
// all values are within range and strategies are internally consistent.
//
// The manager calls this during construction and refuses to start on any
// violation; callers loading configuration themselves should do the same.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
		// Valid log levels
	default:
		return fmt.Errorf("CACHE_LOG_LEVEL must be one of debug, info, warn, error")
	}

	if c.Memory.MaxKeys < 1 {
		return fmt.Errorf("CACHE_MEMORY_MAX_KEYS must be a positive number")
	}
	if c.Memory.DefaultTTLSeconds < 1 {
		return fmt.Errorf("CACHE_MEMORY_DEFAULT_TTL must be a positive number of seconds")
	}
	if c.Memory.CheckPeriodSeconds < 1 {
		return fmt.Errorf("CACHE_MEMORY_CHECK_PERIOD must be a positive number of seconds")
	}

	if c.Redis.Enabled() {
		if c.Redis.DB < 0 || c.Redis.DB > 15 {
			return fmt.Errorf("CACHE_REDIS_DB must be a number between 0 and 15")
		}
		if c.Redis.PoolSize < 1 {
			return fmt.Errorf("CACHE_REDIS_POOL_SIZE must be a positive number")
		}
		if c.Redis.TimeoutMS < 1 {
			return fmt.Errorf("CACHE_REDIS_TIMEOUT_MS must be a positive number of milliseconds")
		}
		if c.Redis.DefaultTTLSeconds < 1 {
			return fmt.Errorf("CACHE_REDIS_DEFAULT_TTL must be a positive number of seconds")
		}
	}

	if c.Serializer.CompressionThreshold < 0 {
		return fmt.Errorf("CACHE_COMPRESSION_THRESHOLD must not be negative")
	}

	if c.Warmup.IntervalSeconds < 1 {
		return fmt.Errorf("CACHE_WARMUP_INTERVAL must be a positive number of seconds")
	}
	if c.Warmup.BatchSize < 1 {
		return fmt.Errorf("CACHE_WARMUP_BATCH_SIZE must be a positive number")
	}

	if c.Health.IntervalSeconds < 1 {
		return fmt.Errorf("CACHE_HEALTH_CHECK_INTERVAL must be a positive number of seconds")
	}
	if c.Metrics.IntervalSeconds < 1 {
		return fmt.Errorf("CACHE_METRICS_INTERVAL must be a positive number of seconds")
	}

	for name, sc := range c.Strategies {
		if len(sc.Levels) == 0 {
			return fmt.Errorf("strategy %q must list at least one level", name)
		}
		for _, level := range sc.Levels {
			ttl, ok := sc.TTLSeconds[level]
			if !ok {
				return fmt.Errorf("strategy %q is missing a TTL for level %q", name, level)
			}
			if ttl < 1 {
				return fmt.Errorf("strategy %q has a non-positive TTL for level %q", name, level)
			}
		}
	}

	return nil
}

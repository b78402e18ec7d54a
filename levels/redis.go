package levels

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"cache-manager/config"
	"cache-manager/internal/circuitbreaker"
	"cache-manager/internal/common/errors"
	"cache-manager/internal/common/logging"
	"cache-manager/model"
)

// Redis implements a networked level shared between processes. Entries are
// stored as JSON under a configurable key prefix with server-side expiry.
//
// The connection is established lazily by the underlying client, so
// construction succeeds even while the server is down. Every operation runs
// behind a circuit breaker: after five consecutive failures calls fail fast
// until a half-open probe succeeds, which keeps an outage from stacking
// timeouts on the hot path.
type Redis struct {
	client     *redis.Client
	breaker    *circuitbreaker.GoBreakerAdapter
	keyPrefix  string
	timeout    time.Duration
	defaultTTL time.Duration

	logger    logging.Logger
	closeOnce sync.Once
}

// NewRedis creates the networked level. It does not dial: the first
// operation does, and failures surface as misses or transient errors
// rather than construction errors.
func NewRedis(cfg config.RedisConfig, logger logging.Logger) *Redis {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	if cfg.Address == "" {
		cfg.Address = "localhost:6379"
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 10
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "cache:"
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	return &Redis{
		client:     client,
		breaker:    circuitbreaker.NewGoBreaker("redis-level", circuitbreaker.DefaultConfig(), logger),
		keyPrefix:  cfg.KeyPrefix,
		timeout:    timeout,
		defaultTTL: cfg.DefaultTTL(),
		logger:     logger,
	}
}

// Name returns "l2".
func (r *Redis) Name() string {
	return L2
}

// Get retrieves the entry stored under key. Transport failures, corrupt
// payloads, and an open breaker are all absorbed as misses.
func (r *Redis) Get(ctx context.Context, key string) (*model.Entry, bool) {
	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var raw []byte
	err := r.breaker.Execute(func() error {
		b, err := r.client.Get(opCtx, r.prefixed(key)).Bytes()
		if err == redis.Nil {
			// An absent key must not count against the breaker.
			return errors.NotFoundError(key)
		}
		if err != nil {
			return err
		}
		raw = b
		return nil
	})
	if err != nil {
		if !errors.IsType(err, errors.ErrTypeNotFound) {
			r.logger.Debug("Redis get failed, treating as miss",
				logging.String("level", L2),
				logging.String("key", key),
				logging.Err(err),
			)
		}
		return nil, false
	}

	var entry model.Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		r.logger.Warn("Corrupt entry in redis, treating as miss",
			logging.String("level", L2),
			logging.String("key", key),
			logging.Err(err),
		)
		return nil, false
	}

	return &entry, true
}

// Set stores a copy of entry under key with server-side expiry. The entry's
// ExpiresAt is stamped for observability, but the server expiry is
// authoritative so clock skew between writers never resurrects stale data.
func (r *Redis) Set(ctx context.Context, key string, entry *model.Entry, ttl time.Duration) error {
	if entry == nil {
		return errors.InternalError("cannot store a nil cache entry", nil)
	}

	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	if ttl < 0 {
		ttl = 0
	}

	stored := entry.Clone()
	stored.Key = key
	if ttl > 0 {
		stored.ExpiresAt = time.Now().Add(ttl)
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return errors.SerializationError("failed to encode cache entry for redis", err)
	}

	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err = r.breaker.Execute(func() error {
		return r.client.Set(opCtx, r.prefixed(key), raw, ttl).Err()
	})
	if err != nil {
		return errors.TransientError(L2, "set", err)
	}

	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (r *Redis) Delete(ctx context.Context, key string) error {
	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.breaker.Execute(func() error {
		return r.client.Del(opCtx, r.prefixed(key)).Err()
	})
	if err != nil {
		return errors.TransientError(L2, "delete", err)
	}

	return nil
}

// Scan walks the server with SCAN and returns the keys under this level's
// prefix that begin with prefix, with the level prefix stripped.
func (r *Redis) Scan(ctx context.Context, prefix string) ([]string, error) {
	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	match := escapeGlob(r.keyPrefix+prefix) + "*"

	var keys []string
	err := r.breaker.Execute(func() error {
		iter := r.client.Scan(opCtx, 0, match, 0).Iterator()
		for iter.Next(opCtx) {
			keys = append(keys, strings.TrimPrefix(iter.Val(), r.keyPrefix))
		}
		return iter.Err()
	})
	if err != nil {
		return nil, errors.TransientError(L2, "scan", err)
	}

	return keys, nil
}

// Ping reports whether the server is reachable. While the breaker is open
// Ping fails immediately, which is what health probes should see.
func (r *Redis) Ping(ctx context.Context) error {
	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.breaker.Execute(func() error {
		return r.client.Ping(opCtx).Err()
	})
	if err != nil {
		return errors.TransientError(L2, "ping", err)
	}

	return nil
}

// Close releases the client's connection pool. Close is idempotent.
func (r *Redis) Close() error {
	var err error
	r.closeOnce.Do(func() {
		err = r.client.Close()
	})
	return err
}

// Ensure Redis implements the level interface
var _ Level = (*Redis)(nil)

func (r *Redis) prefixed(key string) string {
	return r.keyPrefix + key
}

// escapeGlob quotes redis MATCH metacharacters so stored keys are matched
// literally.
var globEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

// Package cache provides TTL-bounded storage for evaluation results, with a
// process-local tier and an optional Redis tier selected by configuration.
package cache

import (
	"context"
	"time"

	"github.com/turtacn/PatentGym/internal/config"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/pkg/errors"
)

var (
	// ErrCacheMiss is returned by Get when the key is absent or expired.
	ErrCacheMiss = errors.New(errors.ErrCodeNotFound, "cache miss")

	// ErrCacheUnavailable is returned when the backing store cannot be
	// reached.
	ErrCacheUnavailable = errors.New(errors.ErrCodeCacheError, "cache unavailable")
)

// Store is the caching contract the application layer depends on.  Values
// are JSON-serialized; dest must be a pointer.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// GetOrSet returns the cached value for key, or runs loader once,
	// caches its result, and returns it.  Concurrent callers for the same
	// key share a single loader invocation.
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error

	Ping(ctx context.Context) error
	Close() error
}

// NewStore selects the Redis tier when it is enabled in cfg, the local tier
// otherwise.
func NewStore(cfg *config.Config, logger logging.Logger) (Store, error) {
	if cfg.Redis.Enabled {
		return NewRedisStore(cfg.Redis, logger)
	}
	return NewLocalStore(cfg.Cache, logger), nil
}

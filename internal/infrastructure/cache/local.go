package cache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/PatentGym/internal/config"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/pkg/errors"
)

// localStore keeps serialized values in process memory with per-entry TTL.
type localStore struct {
	cache      *gocache.Cache
	defaultTTL time.Duration
	group      singleflight.Group
	logger     logging.Logger
}

// NewLocalStore builds an in-process store from cfg.
func NewLocalStore(cfg config.CacheConfig, logger logging.Logger) Store {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &localStore{
		cache:      gocache.New(ttl, cleanup),
		defaultTTL: ttl,
		logger:     logger.Named("cache.local"),
	}
}

func (s *localStore) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := s.cache.Get(key)
	if !ok {
		return ErrCacheMiss
	}
	data, ok := raw.([]byte)
	if !ok {
		return errors.New(errors.ErrCodeCacheError, "unexpected cache entry type")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode cached value")
	}
	return nil
}

func (s *localStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode value for caching")
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	s.cache.Set(key, data, ttl)
	return nil
}

func (s *localStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		s.cache.Delete(k)
	}
	return nil
}

func (s *localStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.cache.Get(key)
	return ok, nil
}

func (s *localStore) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	if err := s.Get(ctx, key, dest); err == nil {
		return nil
	} else if !errors.IsCode(err, errors.ErrCodeNotFound) {
		return err
	}

	data, err, _ := s.group.Do(key, func() (interface{}, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode loaded value")
		}
		if ttl <= 0 {
			ttl = s.defaultTTL
		}
		s.cache.Set(key, encoded, ttl)
		return encoded, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(data.([]byte), dest)
}

func (s *localStore) Ping(context.Context) error { return nil }

func (s *localStore) Close() error {
	s.cache.Flush()
	return nil
}

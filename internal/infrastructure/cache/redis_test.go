package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentGym/pkg/errors"
)

func newMockedRedis(t *testing.T) (*redisStore, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	store := newRedisStoreWithClient(db, "test:", logging.NewNopLogger())
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return store, mock
}

func TestRedisStoreGetHit(t *testing.T) {
	store, mock := newMockedRedis(t)

	want := cachedResult{IsNovel: true, Score: 0.68}
	raw, _ := json.Marshal(want)
	mock.ExpectGet("test:eval:abc").SetVal(string(raw))

	var got cachedResult
	require.NoError(t, store.Get(context.Background(), "eval:abc", &got))
	assert.Equal(t, want, got)
}

func TestRedisStoreGetMiss(t *testing.T) {
	store, mock := newMockedRedis(t)
	mock.ExpectGet("test:absent").RedisNil()

	var got cachedResult
	assert.ErrorIs(t, store.Get(context.Background(), "absent", &got), ErrCacheMiss)
}

func TestRedisStoreSet(t *testing.T) {
	store, mock := newMockedRedis(t)

	value := cachedResult{Score: 0.5}
	raw, _ := json.Marshal(value)
	mock.ExpectSet("test:eval:xyz", raw, time.Minute).SetVal("OK")

	require.NoError(t, store.Set(context.Background(), "eval:xyz", value, time.Minute))
}

func TestRedisStoreDelete(t *testing.T) {
	store, mock := newMockedRedis(t)
	mock.ExpectDel("test:a", "test:b").SetVal(2)

	require.NoError(t, store.Delete(context.Background(), "a", "b"))
}

func TestRedisStoreExists(t *testing.T) {
	store, mock := newMockedRedis(t)
	mock.ExpectExists("test:present").SetVal(1)

	ok, err := store.Exists(context.Background(), "present")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStoreGetOrSetLoadsOnMiss(t *testing.T) {
	store, mock := newMockedRedis(t)

	value := cachedResult{IsNovel: true, Score: 0.9}
	raw, _ := json.Marshal(value)
	mock.ExpectGet("test:eval:load").RedisNil()
	mock.ExpectSet("test:eval:load", raw, time.Minute).SetVal("OK")

	var got cachedResult
	err := store.GetOrSet(context.Background(), "eval:load", &got, time.Minute, func(context.Context) (interface{}, error) {
		return value, nil
	})
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestRedisStorePingFailure(t *testing.T) {
	store, mock := newMockedRedis(t)
	mock.ExpectPing().SetErr(assert.AnError)

	err := store.Ping(context.Background())
	assert.True(t, errors.IsCode(err, errors.ErrCodeCacheError))
}

package cache

import (
	"AuthSessionService/internal/model"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisCache_SetGetExpire(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisCache(client, "blocked:")
	ctx := context.Background()

	_, found, err := cache.Get(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.SetIfAbsent(ctx, "jti-1", "blocked", time.Minute))
	value, found, err := cache.Get(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "blocked", value)
	assert.True(t, mr.Exists("blocked:jti-1"))

	mr.FastForward(2 * time.Minute)
	_, found, err = cache.Get(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_SetIfAbsentKeepsTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisCache(client, "blocked:")
	ctx := context.Background()

	require.NoError(t, cache.SetIfAbsent(ctx, "jti-1", "blocked", time.Minute))
	mr.FastForward(30 * time.Second)
	require.NoError(t, cache.SetIfAbsent(ctx, "jti-1", "blocked", time.Hour))

	assert.LessOrEqual(t, mr.TTL("blocked:jti-1"), 30*time.Second)
}

func TestRedisSetCache_Operations(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewRedisSetCache(client, "active:")
	ctx := context.Background()

	require.NoError(t, cache.Add(ctx, "user", "a"))
	require.NoError(t, cache.Add(ctx, "user", "b"))
	require.NoError(t, cache.Add(ctx, "user", "a"))

	found, err := cache.Contains(ctx, "user", "a")
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, cache.Remove(ctx, "user", "a"))
	found, err = cache.Contains(ctx, "user", "a")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = cache.Contains(ctx, "user", "b")
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, cache.Clear(ctx, "user"))
	found, err = cache.Contains(ctx, "user", "b")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisSetCache_Swap(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewRedisSetCache(client, "active:")
	ctx := context.Background()

	require.NoError(t, cache.Add(ctx, "user", "old"))

	swapped, err := cache.Swap(ctx, "user", "old", "new")
	require.NoError(t, err)
	assert.True(t, swapped)

	swapped, err = cache.Swap(ctx, "user", "old", "newer")
	require.NoError(t, err)
	assert.False(t, swapped)

	found, _ := cache.Contains(ctx, "user", "new")
	assert.True(t, found)
	found, _ = cache.Contains(ctx, "user", "newer")
	assert.False(t, found)
}

func TestRedisCache_BackendDown(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisCache(client, "blocked:")
	sets := NewRedisSetCache(client, "active:")
	mr.Close()
	ctx := context.Background()

	_, _, err := cache.Get(ctx, "jti")
	assert.True(t, errors.Is(err, model.ErrStoreUnavailable))

	_, err = sets.Contains(ctx, "user", "a")
	assert.True(t, errors.Is(err, model.ErrStoreUnavailable))

	_, err = sets.Swap(ctx, "user", "a", "b")
	assert.True(t, errors.Is(err, model.ErrStoreUnavailable))
}

package cache

import (
	"AuthSessionService/internal/model"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache ключ-значение с TTL поверх Redis
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (cache *RedisCache) key(key string) string {
	return cache.prefix + key
}

func (cache *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := cache.client.Get(ctx, cache.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return value, true, nil
}

// SetIfAbsent не перезаписывает существующее значение и его TTL
func (cache *RedisCache) SetIfAbsent(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := cache.client.SetNX(ctx, cache.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return nil
}

const swapMemberScript = `
if redis.call("SISMEMBER", KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call("SREM", KEYS[1], ARGV[1])
redis.call("SADD", KEYS[1], ARGV[2])
return 1
`

var swapMemberLua = redis.NewScript(swapMemberScript)

// RedisSetCache множества поверх Redis. Каждая операция атомарна на уровне ключа.
type RedisSetCache struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisSetCache(client redis.UniversalClient, prefix string) *RedisSetCache {
	return &RedisSetCache{client: client, prefix: prefix}
}

func (cache *RedisSetCache) key(key string) string {
	return cache.prefix + key
}

func (cache *RedisSetCache) Add(ctx context.Context, key string, value string) error {
	if err := cache.client.SAdd(ctx, cache.key(key), value).Err(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return nil
}

func (cache *RedisSetCache) Remove(ctx context.Context, key string, value string) error {
	if err := cache.client.SRem(ctx, cache.key(key), value).Err(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return nil
}

func (cache *RedisSetCache) Clear(ctx context.Context, key string) error {
	if err := cache.client.Del(ctx, cache.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return nil
}

func (cache *RedisSetCache) Contains(ctx context.Context, key string, value string) (bool, error) {
	found, err := cache.client.SIsMember(ctx, cache.key(key), value).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return found, nil
}

// Swap атомарно заменяет oldValue на newValue. false, если oldValue не было в множестве.
func (cache *RedisSetCache) Swap(ctx context.Context, key string, oldValue string, newValue string) (bool, error) {
	swapped, err := swapMemberLua.Run(ctx, cache.client, []string{cache.key(key)}, oldValue, newValue).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return swapped == 1, nil
}

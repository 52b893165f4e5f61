package settings

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "settings:"

// Cache is a redis read-through cache for setting values. Concurrent
// lookups for the same key are collapsed into one repository call.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached value for key, loading and storing it on a miss.
func (c *Cache) Get(ctx context.Context, key string, load func(context.Context) (string, error)) (string, error) {
	if c == nil || c.client == nil {
		return load(ctx)
	}
	val, err := c.client.Get(ctx, cacheKeyPrefix+key).Result()
	if err == nil {
		return val, nil
	}
	if !errors.Is(err, redis.Nil) {
		// Cache trouble must not take settings reads down with it.
		return load(ctx)
	}
	loaded, err, _ := c.group.Do(key, func() (any, error) {
		val, err := load(ctx)
		if err != nil {
			return "", err
		}
		_ = c.client.Set(ctx, cacheKeyPrefix+key, val, c.ttl).Err()
		return val, nil
	})
	if err != nil {
		return "", err
	}
	return loaded.(string), nil
}

// Invalidate drops the cached value for key.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, cacheKeyPrefix+key).Err()
}

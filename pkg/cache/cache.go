package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a thin JSON blob cache over Redis. A nil *Cache is a valid
// no-op cache so callers never need to branch on whether Redis is configured.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to Redis and returns a cache with the given TTL.
func New(ctx context.Context, addr, password string, ttl time.Duration) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Cache{rdb: rdb, ttl: ttl}, nil
}

// Get returns the cached payload for key, or (nil, nil) on a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Set stores the payload for key with the cache TTL.
func (c *Cache) Set(ctx context.Context, key string, payload []byte) error {
	if c == nil {
		return nil
	}
	return c.rdb.Set(ctx, key, payload, c.ttl).Err()
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

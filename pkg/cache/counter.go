package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Counter tracks short-lived per-key counters and one-shot markers. OTP
// attempt counting and resend throttling are built on it.
type Counter interface {
	// Incr increments key, starting the ttl window on first use, and returns the new value.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Acquire sets key if absent and reports whether this call set it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release drops key so the next Acquire succeeds.
	Release(ctx context.Context, key string) error
}

// RedisCounter keeps counters in Redis so limits hold across replicas.
type RedisCounter struct {
	client *redis.Client
	prefix string
}

// NewRedisCounter builds a Redis-backed counter with keys under prefix.
func NewRedisCounter(client *redis.Client, prefix string) *RedisCounter {
	return &RedisCounter{client: client, prefix: prefix}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	full := c.prefix + key
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, full)
		pipe.ExpireNX(ctx, full, ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", full, err)
	}
	return incr.Val(), nil
}

func (c *RedisCounter) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	full := c.prefix + key
	ok, err := c.client.SetNX(ctx, full, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", full, err)
	}
	return ok, nil
}

func (c *RedisCounter) Release(ctx context.Context, key string) error {
	full := c.prefix + key
	if err := c.client.Del(ctx, full).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", full, err)
	}
	return nil
}

// MemoryCounter is the single-instance fallback when Redis is disabled.
type MemoryCounter struct {
	store *gocache.Cache
}

// NewMemoryCounter builds an in-process counter that sweeps expired keys every cleanup interval.
func NewMemoryCounter(cleanup time.Duration) *MemoryCounter {
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return &MemoryCounter{store: gocache.New(gocache.NoExpiration, cleanup)}
}

func (c *MemoryCounter) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	if err := c.store.Add(key, int64(1), ttl); err == nil {
		return 1, nil
	}
	n, err := c.store.IncrementInt64(key, 1)
	if err != nil {
		// Expired between Add and Increment; start a fresh window.
		c.store.Set(key, int64(1), ttl)
		return 1, nil
	}
	return n, nil
}

func (c *MemoryCounter) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	return c.store.Add(key, true, ttl) == nil, nil
}

func (c *MemoryCounter) Release(_ context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

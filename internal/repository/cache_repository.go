package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/church-events-api/pkg/errors"
)

// CacheRepository stores JSON payloads in Redis, or in process memory when
// Redis is disabled.
type CacheRepository struct {
	client *redis.Client
	local  *gocache.Cache
	logger *zap.Logger
}

// NewCacheRepository constructs a cache repository. A nil client selects the
// in-memory store.
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	repo := &CacheRepository{client: client, logger: logger}
	if client == nil {
		repo.local = gocache.New(5*time.Minute, 10*time.Minute)
	}
	return repo
}

// Get retrieves and unmarshals the cached value into the provided destination.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	var raw []byte
	if r.client == nil {
		value, ok := r.local.Get(key)
		if !ok {
			return appErrors.ErrCacheMiss
		}
		raw = value.([]byte)
	} else {
		var err error
		raw, err = r.client.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				return appErrors.ErrCacheMiss
			}
			return fmt.Errorf("redis get %s: %w", key, err)
		}
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Set marshals the provided value and stores it with the given TTL.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}

	if r.client == nil {
		r.local.Set(key, payload, ttl)
		return nil
	}
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// DeleteByPrefix removes cached entries whose key starts with prefix.
func (r *CacheRepository) DeleteByPrefix(ctx context.Context, prefix string) error {
	if r.client == nil {
		for key := range r.local.Items() {
			if strings.HasPrefix(key, prefix) {
				r.local.Delete(key)
			}
		}
		return nil
	}

	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", key, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan prefix %s: %w", prefix, err)
	}
	r.logger.Debug("cache invalidated", zap.String("prefix", prefix))
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *CacheRepository) Close() error {
	if r.client == nil {
		r.local.Flush()
		return nil
	}
	return r.client.Close()
}

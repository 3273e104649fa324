package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/church-events-api/pkg/config"
)

// redisStartupWait bounds how long NewRedis retries the first PING.
const redisStartupWait = 15 * time.Second

// NewRedis returns a client for the OTP attempt counters and the admin
// summary cache, or nil when Redis is disabled and in-process stores are used.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = redisStartupWait
	err := backoff.Retry(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return client.Ping(pingCtx).Err()
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis not reachable at %s: %w", addr, err)
	}
	return client, nil
}

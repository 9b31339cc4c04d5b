package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// RedisRateLimiter shares fixed windows between instances. Each window is a
// counter that expires with the window.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

var _ Limiter = (*RedisRateLimiter)(nil)

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, limit: limit, window: window}
}

func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	redisKey := keyPrefix + key

	count, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit incr: %w, key: %s", err, key)
	}

	if count == 1 {
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			return false, 0, fmt.Errorf("rate limit expire: %w, key: %s", err, key)
		}
	}

	if count <= int64(rl.limit) {
		return true, 0, nil
	}

	ttl, err := rl.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl <= 0 {
		return false, rl.window, nil
	}
	return false, ttl, nil
}

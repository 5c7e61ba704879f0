package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// RedisLimiter is a fixed-window counter shared by every server instance.
// The first hit of a window creates the counter and sets its expiry.
type RedisLimiter struct {
	client redis.Cmdable
}

func NewRedisLimiter(client redis.Cmdable) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	if limit <= 0 {
		return Result{Allowed: true}, nil
	}

	k := redisKeyPrefix + key

	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return Result{}, fmt.Errorf("incr %s: %w", k, err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, k, window).Err(); err != nil {
			return Result{}, fmt.Errorf("expire %s: %w", k, err)
		}
	}

	if n <= int64(limit) {
		return Result{Allowed: true, Remaining: limit - int(n)}, nil
	}

	ttl, err := l.client.TTL(ctx, k).Result()
	if err != nil {
		return Result{}, fmt.Errorf("ttl %s: %w", k, err)
	}
	if ttl < 0 {
		// counter lost its expiry; restart the window
		if err := l.client.Expire(ctx, k, window).Err(); err != nil {
			return Result{}, fmt.Errorf("expire %s: %w", k, err)
		}
		ttl = window
	}
	return Result{Allowed: false, RetryAfter: ttl}, nil
}

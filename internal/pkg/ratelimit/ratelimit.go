package ratelimit

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Limiter admits at most a fixed number of events per key per window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is a fixed-window limiter on go-cache. A key's window opens with its first
// event and the counter expires with it; ended windows are swept every period.
type MemoryLimiter struct {
	limit   int
	period  time.Duration
	windows *gocache.Cache
}

func NewMemoryLimiter(limit int, period time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		period:  period,
		windows: gocache.New(period, period),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	count, err := l.windows.IncrementInt(key, 1)
	if err != nil {
		// no open window
		if addErr := l.windows.Add(key, 1, l.period); addErr == nil {
			count = 1
		} else if count, err = l.windows.IncrementInt(key, 1); err != nil {
			return false, fmt.Errorf("failed to count %s: %w", key, err)
		}
	}
	return count <= l.limit, nil
}

// RedisLimiter counts with INCR and lets the key expire at the end of its window.
type RedisLimiter struct {
	rdb    *redis.Client
	prefix string
	limit  int
	period time.Duration
}

func NewRedisLimiter(rdb *redis.Client, prefix string, limit int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, prefix: prefix, limit: limit, period: period}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)

	count, err := l.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, redisKey, l.period).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(l.limit), nil
}

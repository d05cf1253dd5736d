// Package ratelimit caps how many sessions a single client may start within a
// fixed window.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

type Limiter interface {
	// Allow records one hit for key and reports whether it is within the limit.
	Allow(ctx context.Context, key string) (bool, error)
}

// NewLimiter returns a redis-backed limiter when rdb is set, an in-process one
// otherwise. A non-positive limit disables limiting.
func NewLimiter(rdb *redis.Client, limit int, window time.Duration) Limiter {
	if limit <= 0 {
		return noopLimiter{}
	}
	if rdb != nil {
		return &redisLimiter{rdb: rdb, limit: limit, window: window, prefix: "ratelimit:session_start:"}
	}
	return &memoryLimiter{
		counters: cache.New(window, window),
		limit:    limit,
		window:   window,
	}
}

type noopLimiter struct{}

func (noopLimiter) Allow(context.Context, string) (bool, error) { return true, nil }

type redisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key

	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}
	return incr.Val() <= int64(l.limit), nil
}

type memoryLimiter struct {
	mu       sync.Mutex
	counters *cache.Cache
	limit    int
	window   time.Duration
}

func (l *memoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// the first hit fixes the window; later hits keep its expiry
	if err := l.counters.Add(key, 1, l.window); err == nil {
		return true, nil
	}
	n, err := l.counters.IncrementInt(key, 1)
	if err != nil {
		// expired between Add and Increment
		l.counters.Set(key, 1, l.window)
		return true, nil
	}
	return n <= l.limit, nil
}

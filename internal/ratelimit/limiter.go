// Package ratelimit gates public submissions per client.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"memorial-registry/pkg/utils"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more hit for key is allowed now.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Local is an in-process token bucket per key: limit hits per window, refilled
// evenly. State is lost on restart and not shared between replicas.
type Local struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

func NewLocal(limit int, window time.Duration) *Local {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Hour
	}
	return &Local{
		limiters: make(map[string]*rate.Limiter),
		every:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
	}
}

func (l *Local) Allow(_ context.Context, key string) (bool, error) {
	return l.get(key).Allow(), nil
}

func (l *Local) get(key string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.limiters[key]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.limiters[key]; ok {
		return lim
	}
	lim = rate.NewLimiter(l.every, l.burst)
	l.limiters[key] = lim
	return lim
}

// RedisWindow is a fixed-window counter shared by every API replica.
type RedisWindow struct {
	rdb    redis.Scripter
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

func NewRedisWindow(rdb redis.Scripter, prefix string, limit int, window time.Duration) *RedisWindow {
	if prefix == "" {
		prefix = "ratelimit:submit"
	}
	return &RedisWindow{rdb: rdb, prefix: prefix, limit: int64(limit), window: window, now: time.Now}
}

func (r *RedisWindow) Allow(ctx context.Context, key string) (bool, error) {
	n, err := utils.IncrWindow(ctx, r.rdb, r.windowKey(key), r.window)
	if err != nil {
		return false, err
	}
	return n <= r.limit, nil
}

func (r *RedisWindow) windowKey(key string) string {
	bucket := r.now().UnixMilli() / r.window.Milliseconds()
	return fmt.Sprintf("%s:%s:%d", r.prefix, key, bucket)
}

// Package throttle limits login attempts with a fixed-window counter in Redis.
package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter allows at most max attempts per key within window.
type Limiter struct {
	rdb    *redis.Client
	max    int64
	window time.Duration
	prefix string
}

func New(rdb *redis.Client, max int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, max: int64(max), window: window, prefix: "login:att:"}
}

// Allow records an attempt for key and reports whether it is within the
// limit. The window starts at the first attempt.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key

	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("counting attempt: %w", err)
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("starting window: %w", err)
		}
	}

	return n <= l.max, nil
}

// Reset clears the counter for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if err := l.rdb.Del(ctx, l.prefix+key).Err(); err != nil {
		return fmt.Errorf("resetting attempts: %w", err)
	}
	return nil
}

package redis

import (
	"context"
	"fmt"
	"time"
)

// Counter is the part of Client the limiter needs.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	ExpireSeconds(ctx context.Context, key string, ttlSeconds int64) error
}

// FixedWindowLimiter counts events per key per fixed time window.
type FixedWindowLimiter struct {
	client Counter
	prefix string
	window time.Duration
	now    func() time.Time
}

func NewFixedWindowLimiter(client Counter, prefix string, window time.Duration) *FixedWindowLimiter {
	if prefix == "" {
		prefix = "rate"
	}
	if window <= 0 {
		window = time.Minute
	}
	return &FixedWindowLimiter{
		client: client,
		prefix: prefix,
		window: window,
		now:    time.Now,
	}
}

// Incr increments the counter for (key, current window) and returns the current count.
func (l *FixedWindowLimiter) Incr(ctx context.Context, key string) (int64, error) {
	if key == "" {
		key = "unknown"
	}

	windowSeconds := int64(l.window.Seconds())
	if windowSeconds <= 0 {
		windowSeconds = 60
	}

	bucket := l.now().UTC().Unix() / windowSeconds
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, bucket)

	count, err := l.client.Incr(ctx, redisKey)
	if err != nil {
		return 0, err
	}

	// The bucket is part of the key, so the TTL only bounds memory.
	if count == 1 {
		_ = l.client.ExpireSeconds(ctx, redisKey, windowSeconds*2)
	}

	return count, nil
}

package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/IgorGrieder/linkhub/internal/constants"
	"github.com/IgorGrieder/linkhub/internal/infrastructure/logger"
	"github.com/IgorGrieder/linkhub/pkg/httputils"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request for key fits in its budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// WindowCounter is the shared counter behind RedisFixedWindowLimiter.
type WindowCounter interface {
	Incr(ctx context.Context, key string) (int64, error)
}

// RedisFixedWindowLimiter enforces a counter per client per fixed window,
// shared across gateway replicas.
type RedisFixedWindowLimiter struct {
	store WindowCounter
	limit int64
}

func NewRedisFixedWindowLimiter(store WindowCounter, limitPerMinute int) *RedisFixedWindowLimiter {
	if limitPerMinute <= 0 {
		limitPerMinute = 60
	}
	return &RedisFixedWindowLimiter{store: store, limit: int64(limitPerMinute)}
}

func (l *RedisFixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.store.Incr(ctx, key)
	if err != nil {
		return false, err
	}
	return count <= l.limit, nil
}

// LocalLimiter keeps a token bucket per key in process memory. It is used
// when no Redis is configured.
type LocalLimiter struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	limit   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewLocalLimiter(limitPerMinute int) *LocalLimiter {
	if limitPerMinute <= 0 {
		limitPerMinute = 60
	}
	burst := limitPerMinute / 6
	if burst < 1 {
		burst = 1
	}
	return &LocalLimiter{
		entries: make(map[string]*localEntry),
		limit:   rate.Limit(float64(limitPerMinute) / 60.0),
		burst:   burst,
		idle:    3 * time.Minute,
		now:     time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[key]
	if !ok {
		entry = &localEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1), nil
}

// Sweep forgets keys idle for longer than three minutes.
func (l *LocalLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	cutoff := l.now().Add(-l.idle)
	for key, entry := range l.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (l *LocalLimiter) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

func RateLimitMiddleware(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateLimitKey(r)
			ctx, cancel := context.WithTimeout(r.Context(), 200*time.Millisecond)
			defer cancel()

			ok, err := limiter.Allow(ctx, key)
			if err != nil {
				// Fail open: telemetry must not be blocked by a limiter outage.
				logger.Warn("rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				logger.Warn("rate limit exceeded", zap.String("key", key), zap.String("path", r.URL.Path))
				httputils.WriteAPIError(w, r, constants.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) string {
	if apiKey := strings.TrimSpace(r.Header.Get(APIKeyHeader)); apiKey != "" {
		return "api_key:" + apiKey
	}
	if ip := httputils.ClientIP(r); ip != "" {
		return "ip:" + ip
	}
	return "ip:unknown"
}

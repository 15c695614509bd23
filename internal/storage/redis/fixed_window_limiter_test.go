package redis

import (
	"context"
	"testing"
	"time"
)

type fakeCounter struct {
	counts  map[string]int64
	expires map[string]int64
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, expires: map[string]int64{}}
}

func (f *fakeCounter) Incr(_ context.Context, key string) (int64, error) {
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeCounter) ExpireSeconds(_ context.Context, key string, ttl int64) error {
	f.expires[key] = ttl
	return nil
}

func TestFixedWindowLimiter(t *testing.T) {
	counter := newFakeCounter()
	l := NewFixedWindowLimiter(counter, "rl:events", time.Minute)
	now := time.Date(2025, 1, 15, 12, 0, 10, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := l.Incr(ctx, "ip:10.0.0.1")
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("count = %d, want %d", got, want)
		}
	}

	if got, _ := l.Incr(ctx, "ip:10.0.0.2"); got != 1 {
		t.Errorf("other key shares the counter: %d", got)
	}

	now = now.Add(time.Minute)
	if got, _ := l.Incr(ctx, "ip:10.0.0.1"); got != 1 {
		t.Errorf("new window should restart at 1, got %d", got)
	}

	if len(counter.expires) != 3 {
		t.Errorf("expiry should be set once per bucket, got %v", counter.expires)
	}
	for k, ttl := range counter.expires {
		if ttl != 120 {
			t.Errorf("%s ttl = %d, want 120", k, ttl)
		}
	}
}

func TestFixedWindowLimiter_EmptyKey(t *testing.T) {
	counter := newFakeCounter()
	l := NewFixedWindowLimiter(counter, "", 0)
	l.now = func() time.Time { return time.Unix(120, 0) }

	if _, err := l.Incr(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	if counter.counts["rate:unknown:2"] != 1 {
		t.Errorf("unexpected keys: %v", counter.counts)
	}
}

package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestPost_SingleAttemptByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Options{Timeout: time.Second})
	_, err := c.Post(context.Background(), srv.URL, nil, map[string]string{"a": "b"}, nil)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", statusErr.StatusCode)
	}
	if calls.Load() != 1 {
		t.Errorf("expected exactly one attempt, got %d", calls.Load())
	}
}

func TestPost_RetriesWhenConfigured(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(Options{Timeout: time.Second, MaxRetries: 2})
	resp, err := c.Post(context.Background(), srv.URL, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if calls.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestPost_HeadersOverrideContentTypeAndQuery(t *testing.T) {
	var gotContentType, gotIP, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotIP = r.URL.Query().Get("ip")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(Options{Timeout: time.Second})
	resp, err := c.Post(context.Background(), srv.URL,
		map[string]string{"ip": "1.2.3.4", "empty": ""},
		map[string]string{"action": "get_links"},
		map[string]string{"Content-Type": "text/plain;charset=utf-8"},
	)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if gotContentType != "text/plain;charset=utf-8" {
		t.Errorf("content type = %q", gotContentType)
	}
	if gotIP != "1.2.3.4" {
		t.Errorf("ip query = %q", gotIP)
	}
	if gotBody != `{"action":"get_links"}` {
		t.Errorf("body = %q", gotBody)
	}
}

func TestCircuitBreaker_Transitions(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute)
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }

	cb.OnFailure()
	if cb.State() != StateClosed {
		t.Fatalf("one failure should keep breaker closed")
	}
	cb.OnFailure()
	if cb.State() != StateOpen {
		t.Fatalf("threshold should open the breaker")
	}
	if err := cb.CheckBeforeRequest(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("open breaker should block, got %v", err)
	}

	now = now.Add(2 * time.Minute)
	if err := cb.CheckBeforeRequest(); err != nil {
		t.Fatalf("breaker should half-open after timeout, got %v", err)
	}
	cb.OnSuccess()
	if cb.State() != StateClosed {
		t.Errorf("success in half-open should close the breaker")
	}
}

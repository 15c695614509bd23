package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestParseEndpoint(t *testing.T) {
	tests := map[string]string{
		"http://localhost:4318":           "localhost:4318",
		"https://otel.example/v1/traces":  "otel.example",
		"collector:4318/":                 "collector:4318",
		" http://collector:4318/v1/logs ": "collector:4318",
	}
	for in, want := range tests {
		if got := parseEndpoint(in); got != want {
			t.Errorf("parseEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestShutdownWithin(t *testing.T) {
	if err := ShutdownWithin(nil, time.Second); err != nil {
		t.Errorf("nil shutdown should be a no-op, got %v", err)
	}

	var deadline bool
	err := ShutdownWithin(func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		return errors.New("flush failed")
	}, time.Second)
	if !deadline {
		t.Error("shutdown should run with a deadline")
	}
	if err == nil {
		t.Error("shutdown error should be returned")
	}
}

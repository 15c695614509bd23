package events

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestHeadersRoundTrip(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	ctx := trace.ContextWithRemoteSpanContext(context.Background(), sc)

	headers := HeadersFromContext(ctx)
	if len(headers) == 0 {
		t.Fatal("expected a traceparent header")
	}

	got := trace.SpanContextFromContext(ContextFromHeaders(context.Background(), headers))
	if got.TraceID() != traceID || got.SpanID() != spanID {
		t.Errorf("span context not propagated: %v", got)
	}
}

func TestHeadersFromContext_NoSpan(t *testing.T) {
	if headers := HeadersFromContext(context.Background()); len(headers) != 0 {
		t.Errorf("expected no headers, got %v", headers)
	}
}

package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/IgorGrieder/linkhub/internal/infrastructure/logger"
	"github.com/IgorGrieder/linkhub/internal/infrastructure/metrics"
	"github.com/IgorGrieder/linkhub/internal/remote"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// MessageReader is the consumer-group side of *kafka.Reader.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Forwarder drains buffered telemetry into the remote store. Delivery is
// best effort: an event the store rejects is logged and its offset is still
// committed, so one bad event never blocks the partition.
type Forwarder struct {
	reader    MessageReader
	store     remote.Caller
	opTimeout time.Duration
	backoff   time.Duration
	tracer    trace.Tracer
}

func NewForwarder(reader MessageReader, store remote.Caller, opTimeout, backoff time.Duration) *Forwarder {
	if opTimeout <= 0 {
		opTimeout = 10 * time.Second
	}
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	return &Forwarder{
		reader:    reader,
		store:     store,
		opTimeout: opTimeout,
		backoff:   backoff,
		tracer:    otel.Tracer("event-forwarder"),
	}
}

// Run consumes until ctx is cancelled.
func (f *Forwarder) Run(ctx context.Context) error {
	for {
		msg, err := f.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			logger.Error("failed to fetch kafka message", zap.Error(err))
			if !sleep(ctx, f.backoff) {
				return nil
			}
			continue
		}

		f.handle(ctx, msg)

		if err := f.reader.CommitMessages(ctx, msg); err != nil {
			logger.Error("failed to commit kafka offset",
				zap.Error(err),
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
			if !sleep(ctx, f.backoff) {
				return nil
			}
		}
	}
}

func (f *Forwarder) handle(ctx context.Context, msg kafka.Message) {
	consumeCtx := ContextFromHeaders(ctx, msg.Headers)
	consumeCtx, span := f.tracer.Start(consumeCtx, "kafka.consume.telemetry",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", msg.Topic),
			attribute.String("messaging.operation", "process"),
			attribute.Int("messaging.kafka.partition", msg.Partition),
			attribute.Int64("messaging.kafka.offset", msg.Offset),
		),
	)
	defer span.End()

	action, err := f.Forward(consumeCtx, msg.Value)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "forward telemetry failed")
		metrics.TelemetryEventsTotal.WithLabelValues(action, "forward_failed").Inc()
		logger.Warn("failed to forward telemetry event",
			zap.Error(err),
			zap.String("action", action),
			zap.Int64("offset", msg.Offset),
		)
		return
	}
	if action != "" {
		metrics.TelemetryEventsTotal.WithLabelValues(action, "forwarded").Inc()
	}
}

// Forward decodes one Telemetry message and posts it. Malformed or unknown
// events are skipped with an empty action and a nil error.
func (f *Forwarder) Forward(ctx context.Context, value []byte) (string, error) {
	var ev Telemetry
	if err := json.Unmarshal(value, &ev); err != nil {
		logger.Warn("invalid telemetry payload, skipping", zap.Error(err), zap.ByteString("payload", value))
		return "", nil
	}
	switch ev.Action {
	case remote.ActionVisitorLog, remote.ActionLinkClick:
	default:
		logger.Warn("unknown telemetry action, skipping", zap.String("action", ev.Action), zap.String("event_id", ev.EventID))
		return "", nil
	}

	if ip := strings.TrimSpace(ev.ClientIP); ip != "" {
		ctx = remote.WithClientIP(ctx, ip)
	}
	opCtx, cancel := context.WithTimeout(ctx, f.opTimeout)
	defer cancel()

	var payload any
	if len(ev.Payload) > 0 {
		payload = ev.Payload
	}
	_, err := remote.Do(opCtx, f.store, ev.Action, payload)
	return ev.Action, err
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

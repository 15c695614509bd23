package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IgorGrieder/linkhub/internal/events"
	"github.com/IgorGrieder/linkhub/internal/remote"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Sink delivers one telemetry event. action is visitor_log or link_click.
type Sink interface {
	Send(ctx context.Context, action string, payload any) error
}

// RemoteSink posts events straight to the remote store, one attempt each.
type RemoteSink struct {
	store remote.Caller
}

func NewRemoteSink(store remote.Caller) *RemoteSink {
	return &RemoteSink{store: store}
}

func (s *RemoteSink) Send(ctx context.Context, action string, payload any) error {
	_, err := remote.Do(ctx, s.store, action, payload)
	return err
}

// MessageWriter is the part of *kafka.Writer the sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSink buffers events on a topic; cmd/event_forwarder delivers them.
type KafkaSink struct {
	writer MessageWriter
	topic  string
	now    func() time.Time
	tracer trace.Tracer
}

func NewKafkaSink(writer MessageWriter, topic string) *KafkaSink {
	return &KafkaSink{
		writer: writer,
		topic:  topic,
		now:    time.Now,
		tracer: otel.Tracer("analytics"),
	}
}

func (s *KafkaSink) Send(ctx context.Context, action string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", action, err)
	}

	ev := events.Telemetry{
		EventID:    uuid.NewString(),
		Action:     action,
		OccurredAt: s.now().UTC().Format(time.RFC3339Nano),
		ClientIP:   remote.ClientIP(ctx),
		Payload:    raw,
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	ctx, span := s.tracer.Start(ctx, "kafka.publish."+action,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", s.topic),
			attribute.String("messaging.operation", "publish"),
			attribute.String("messaging.message.id", ev.EventID),
		),
	)
	defer span.End()

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(action),
		Value:   value,
		Time:    s.now().UTC(),
		Headers: events.HeadersFromContext(ctx),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "kafka publish failed")
		return fmt.Errorf("publish %s: %w", action, err)
	}
	return nil
}

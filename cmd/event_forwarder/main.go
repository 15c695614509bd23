package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IgorGrieder/linkhub/internal/config"
	"github.com/IgorGrieder/linkhub/internal/events"
	"github.com/IgorGrieder/linkhub/internal/infrastructure/logger"
	"github.com/IgorGrieder/linkhub/internal/infrastructure/telemetry"
	"github.com/IgorGrieder/linkhub/internal/remote"
	"github.com/IgorGrieder/linkhub/pkg/httpclient"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Kafka.Enabled() {
		fmt.Fprintln(os.Stderr, "KAFKA_BROKERS must contain at least one broker")
		os.Exit(1)
	}

	if err := logger.Init(cfg.App.Env, cfg.App.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	serviceName := cfg.App.Name + "-event-forwarder"
	var shutdownTracer func(context.Context) error
	if cfg.OTel.Enabled {
		shutdownTracer, err = telemetry.InitTracer(context.Background(), telemetry.Options{
			Endpoint:       cfg.OTel.Endpoint,
			ServiceName:    serviceName,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Env,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", zap.Error(err))
		}
	}
	defer func() {
		if err := telemetry.ShutdownWithin(shutdownTracer, 5*time.Second); err != nil {
			logger.Warn("failed to shutdown tracer", zap.Error(err))
		}
	}()

	store := remote.NewClient(cfg.Remote.URL, httpclient.NewClient(httpclient.Options{
		Timeout:     cfg.Remote.Timeout,
		MaxRetries:  cfg.Remote.MaxRetries,
		MaxFailures: cfg.Remote.CBMaxFailures,
		OpenTimeout: cfg.Remote.CBOpenTimeout,
	}))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.Topic,
		GroupID:     cfg.Kafka.GroupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     config.GetEnvDuration("KAFKA_CONSUMER_MAX_WAIT", 500*time.Millisecond),
		StartOffset: kafka.FirstOffset,
	})
	defer func() {
		if err := reader.Close(); err != nil {
			logger.Warn("failed to close kafka reader", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("event forwarder started",
		zap.Strings("kafka_brokers", cfg.Kafka.Brokers),
		zap.String("kafka_topic", cfg.Kafka.Topic),
		zap.String("kafka_group", cfg.Kafka.GroupID),
		zap.String("client_id", config.DefaultWorkerID(serviceName)),
	)

	forwarder := events.NewForwarder(reader, store,
		config.GetEnvDuration("KAFKA_CONSUMER_OPERATION_TIMEOUT", cfg.Remote.Timeout),
		config.GetEnvDuration("KAFKA_CONSUMER_BACKOFF", 500*time.Millisecond),
	)
	if err := forwarder.Run(ctx); err != nil {
		logger.Error("event forwarder stopped with error", zap.Error(err))
		return
	}
	logger.Info("event forwarder stopping")
}

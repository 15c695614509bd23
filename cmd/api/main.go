package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IgorGrieder/linkhub/internal/app"
	"github.com/IgorGrieder/linkhub/internal/config"
	"github.com/IgorGrieder/linkhub/internal/infrastructure/logger"
	"github.com/IgorGrieder/linkhub/internal/infrastructure/telemetry"
	redisStorage "github.com/IgorGrieder/linkhub/internal/storage/redis"
	httpTransport "github.com/IgorGrieder/linkhub/internal/transport/http"
	"github.com/IgorGrieder/linkhub/internal/transport/http/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.App.Env, cfg.App.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
	)

	var shutdownTracer func(context.Context) error
	if cfg.OTel.Enabled {
		var err error
		shutdownTracer, err = telemetry.InitTracer(context.Background(), telemetry.Options{
			Endpoint:       cfg.OTel.Endpoint,
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Env,
		})
		if err != nil {
			logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			logger.Info("OpenTelemetry tracer initialized", zap.String("endpoint", cfg.OTel.Endpoint))
		}
	}

	a, err := app.New(cfg, app.ModeGateway)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go a.RunCacheSweeper(ctx, time.Minute)

	svc := httpTransport.Services{
		Composer: a.Composer,
		Profiles: a.Profiles,
		Links:    a.Links,
		Tracker:  a.Tracker,
	}
	if a.Redis != nil {
		window := redisStorage.NewFixedWindowLimiter(a.Redis, "rl:events", time.Minute)
		svc.EventLimiter = middleware.NewRedisFixedWindowLimiter(window, cfg.Security.EventRatePerMinute)
		svc.HealthChecks = map[string]httpTransport.Pinger{"redis": a.Redis}
	} else {
		local := middleware.NewLocalLimiter(cfg.Security.EventRatePerMinute)
		go local.RunSweeper(ctx, time.Minute)
		svc.EventLimiter = local
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      httpTransport.NewRouter(cfg, svc),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Page.HardTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", zap.Error(err))
		}
	}()

	logger.Info("Server starting",
		zap.String("port", cfg.Server.Port),
		zap.String("env", cfg.App.Env),
		zap.String("address", fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("kafka", cfg.Kafka.Enabled()),
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("Server error", zap.Error(err))
	}

	if err := a.Close(); err != nil {
		logger.Warn("Failed to release resources", zap.Error(err))
	}
	if err := telemetry.ShutdownWithin(shutdownTracer, 5*time.Second); err != nil {
		logger.Warn("Failed to flush traces", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

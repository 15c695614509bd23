// Package app assembles the data-access services from configuration. Both
// the gateway and the CLI start from here.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IgorGrieder/linkhub/internal/analytics"
	"github.com/IgorGrieder/linkhub/internal/cache"
	"github.com/IgorGrieder/linkhub/internal/config"
	"github.com/IgorGrieder/linkhub/internal/infrastructure/logger"
	"github.com/IgorGrieder/linkhub/internal/links"
	"github.com/IgorGrieder/linkhub/internal/page"
	"github.com/IgorGrieder/linkhub/internal/profile"
	"github.com/IgorGrieder/linkhub/internal/remote"
	"github.com/IgorGrieder/linkhub/internal/session"
	"github.com/IgorGrieder/linkhub/internal/storage"
	"github.com/IgorGrieder/linkhub/internal/storage/file"
	"github.com/IgorGrieder/linkhub/internal/storage/memory"
	redisStorage "github.com/IgorGrieder/linkhub/internal/storage/redis"
	"github.com/IgorGrieder/linkhub/pkg/httpclient"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Mode selects how telemetry identifies the visitor.
type Mode int

const (
	// ModeGateway serves many visitors: identity and IP come from each
	// request, never from the local session.
	ModeGateway Mode = iota
	// ModeInteractive is a single user at a terminal: the logged-in session
	// is the identity and the public IP is looked up.
	ModeInteractive
)

type App struct {
	Config   *config.Config
	Remote   *remote.Client
	Storage  storage.Store
	Redis    *redisStorage.Client
	Session  *session.Manager
	Profiles *profile.Service
	Links    *links.Service
	Tracker  *analytics.Tracker
	Composer *page.Composer

	closers []func() error
}

// New wires every service. Close releases storage and Kafka connections.
func New(cfg *config.Config, mode Mode) (*App, error) {
	a := &App{Config: cfg}

	hc := httpclient.NewClient(httpclient.Options{
		Timeout:     cfg.Remote.Timeout,
		MaxRetries:  cfg.Remote.MaxRetries,
		MaxFailures: cfg.Remote.CBMaxFailures,
		OpenTimeout: cfg.Remote.CBOpenTimeout,
	})
	a.Remote = remote.NewClient(cfg.Remote.URL, hc)

	kv, err := a.openStorage()
	if err != nil {
		return nil, err
	}
	a.Storage = kv

	a.Session = session.NewManager(a.Remote, kv)
	a.Profiles = profile.NewService(a.Remote, cache.New[profile.Profile]("profile", cfg.Cache.ProfileTTL))
	a.Links = links.NewService(a.Remote, cache.New[[]links.Link]("links", cfg.Cache.LinksTTL))

	deps := analytics.Deps{Store: a.Remote, IP: analytics.ContextResolver{}}
	if mode == ModeInteractive {
		deps.Storage = kv
		deps.Identity = a.Session
		deps.IP = analytics.ContextResolver{Fallback: analytics.NewLookupResolver(cfg.Remote.IPLookupURL, nil)}
	}
	if cfg.Kafka.Enabled() {
		writer := &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Kafka.Brokers...),
			Topic:                  cfg.Kafka.Topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
		}
		a.closers = append(a.closers, writer.Close)
		deps.Sink = analytics.NewKafkaSink(writer, cfg.Kafka.Topic)
		logger.Info("telemetry routed through kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}
	a.Tracker = analytics.NewTracker(deps)

	var batcher page.Batcher
	if cfg.Remote.BatchRequests {
		batcher = a.Remote
	}
	a.Composer = page.NewComposer(page.Deps{
		Store:       a.Remote,
		Batcher:     batcher,
		Profiles:    a.Profiles,
		Links:       a.Links,
		Tracker:     a.Tracker,
		SoftTimeout: cfg.Page.SoftTimeout,
		HardTimeout: cfg.Page.HardTimeout,
	})

	return a, nil
}

func (a *App) openStorage() (storage.Store, error) {
	switch a.Config.Storage.Driver {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageRedis:
		rc, err := redisStorage.New(redisStorage.Config{
			Addr:     a.Config.Redis.Addr,
			Password: a.Config.Redis.Password,
			DB:       a.Config.Redis.DB,
			PoolSize: a.Config.Redis.PoolSize,
			Prefix:   a.Config.Redis.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.Redis = rc
		a.closers = append(a.closers, rc.Close)
		logger.Info("storage backend selected", zap.String("backend", "redis"), zap.String("addr", a.Config.Redis.Addr))
		return rc, nil
	default:
		logger.Debug("storage backend selected", zap.String("backend", "file"), zap.String("path", a.Config.Storage.Path))
		return file.New(a.Config.Storage.Path), nil
	}
}

// RunCacheSweeper drops expired cache entries every interval until ctx is done.
func (a *App) RunCacheSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Profiles.CleanExpiredCache()
			a.Links.CleanExpiredCache()
		}
	}
}

// Close waits for background telemetry and then releases connections.
func (a *App) Close() error {
	if a.Tracker != nil {
		a.Tracker.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

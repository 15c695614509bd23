package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Remote   RemoteConfig
	Cache    CacheConfig
	Page     PageConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Security SecurityConfig
	Kafka    KafkaConfig
	OTel     OTelConfig
}

type AppConfig struct {
	Name     string
	Version  string
	Env      string
	LogLevel string
}

type ServerConfig struct {
	Port string
	Host string
}

// RemoteConfig points at the single remote store endpoint.
type RemoteConfig struct {
	URL           string
	Timeout       time.Duration
	MaxRetries    int
	CBMaxFailures int
	CBOpenTimeout time.Duration
	IPLookupURL   string
	BatchRequests bool
}

type CacheConfig struct {
	ProfileTTL time.Duration
	LinksTTL   time.Duration
}

type PageConfig struct {
	SoftTimeout time.Duration
	HardTimeout time.Duration
}

const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type StorageConfig struct {
	Driver string
	Path   string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	Prefix   string
}

type SecurityConfig struct {
	APIKeys            []string
	AllowedOrigins     []string
	EventRatePerMinute int
}

// KafkaConfig is optional. With no brokers, telemetry goes straight to the
// remote store.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type OTelConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{
		App: AppConfig{
			Name:     GetEnv("APP_NAME", "linkhub"),
			Version:  GetEnv("APP_VERSION", "0.1.0"),
			Env:      GetEnv("APP_ENV", "development"),
			LogLevel: GetEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: GetEnv("APP_PORT", "8080"),
			Host: GetEnv("APP_HOST", "localhost"),
		},
		Remote: RemoteConfig{
			URL:           GetEnv("REMOTE_STORE_URL", ""),
			Timeout:       GetEnvDuration("REMOTE_TIMEOUT", 15*time.Second),
			MaxRetries:    GetEnvInt("REMOTE_MAX_RETRIES", 0),
			CBMaxFailures: GetEnvInt("REMOTE_CB_MAX_FAILURES", 5),
			CBOpenTimeout: GetEnvDuration("REMOTE_CB_OPEN_TIMEOUT", 30*time.Second),
			IPLookupURL:   GetEnv("IP_LOOKUP_URL", "https://api.ipify.org?format=json"),
			BatchRequests: GetEnvBool("REMOTE_BATCH_REQUESTS", true),
		},
		Cache: CacheConfig{
			ProfileTTL: GetEnvDuration("PROFILE_CACHE_TTL", 5*time.Minute),
			LinksTTL:   GetEnvDuration("LINKS_CACHE_TTL", 3*time.Minute),
		},
		Page: PageConfig{
			SoftTimeout: GetEnvDuration("PAGE_SOFT_TIMEOUT", 10*time.Second),
			HardTimeout: GetEnvDuration("PAGE_HARD_TIMEOUT", 15*time.Second),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(GetEnv("STORAGE_DRIVER", StorageFile)),
			Path:   GetEnv("STORAGE_PATH", DefaultStoragePath()),
		},
		Redis: RedisConfig{
			Addr:     GetEnv("REDIS_ADDR", "localhost:6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvInt("REDIS_DB", 0),
			PoolSize: GetEnvInt("REDIS_POOL_SIZE", 10),
			Prefix:   GetEnv("REDIS_PREFIX", "linkhub"),
		},
		Security: SecurityConfig{
			APIKeys:            SplitCSV(GetEnv("API_KEYS", "")),
			AllowedOrigins:     SplitCSV(GetEnv("CORS_ALLOWED_ORIGINS", "")),
			EventRatePerMinute: GetEnvInt("EVENT_RATE_PER_MINUTE", 60),
		},
		Kafka: KafkaConfig{
			Brokers: SplitCSV(GetEnv("KAFKA_BROKERS", "")),
			Topic:   GetEnv("KAFKA_TELEMETRY_TOPIC", "linkhub.telemetry"),
			GroupID: GetEnv("KAFKA_GROUP_ID", "linkhub-event-forwarder"),
		},
		OTel: OTelConfig{
			Enabled:  GetEnvBool("OTEL_ENABLED", false),
			Endpoint: GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Remote.URL == "" {
		return fmt.Errorf("REMOTE_STORE_URL is required")
	}
	if c.Remote.MaxRetries < 0 {
		return fmt.Errorf("REMOTE_MAX_RETRIES must not be negative (got %d)", c.Remote.MaxRetries)
	}
	switch c.Storage.Driver {
	case StorageFile, StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be file, redis or memory (got %q)", c.Storage.Driver)
	}
	if c.Page.SoftTimeout > c.Page.HardTimeout {
		return fmt.Errorf("PAGE_SOFT_TIMEOUT (%s) must not exceed PAGE_HARD_TIMEOUT (%s)", c.Page.SoftTimeout, c.Page.HardTimeout)
	}
	if c.Security.EventRatePerMinute <= 0 {
		return fmt.Errorf("EVENT_RATE_PER_MINUTE must be positive (got %d)", c.Security.EventRatePerMinute)
	}
	return nil
}

// DefaultStoragePath is the session file under the user config dir, or the
// working directory when that cannot be resolved.
func DefaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "linkhub-session.json"
	}
	return filepath.Join(dir, "linkhub", "session.json")
}

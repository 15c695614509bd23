package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REMOTE_STORE_URL", "https://script.example/exec")
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.ProfileTTL != 5*time.Minute || cfg.Cache.LinksTTL != 3*time.Minute {
		t.Errorf("cache ttls = %v / %v", cfg.Cache.ProfileTTL, cfg.Cache.LinksTTL)
	}
	if cfg.Page.SoftTimeout != 10*time.Second || cfg.Page.HardTimeout != 15*time.Second {
		t.Errorf("page timeouts = %v / %v", cfg.Page.SoftTimeout, cfg.Page.HardTimeout)
	}
	if cfg.Remote.MaxRetries != 0 {
		t.Errorf("retries should default to 0, got %d", cfg.Remote.MaxRetries)
	}
	if cfg.Storage.Driver != StorageFile {
		t.Errorf("driver = %q", cfg.Storage.Driver)
	}
	if cfg.Kafka.Enabled() {
		t.Error("kafka should be off without brokers")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing endpoint", map[string]string{"REMOTE_STORE_URL": ""}, "REMOTE_STORE_URL"},
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "sqlite"}, "STORAGE_DRIVER"},
		{"soft after hard", map[string]string{"PAGE_SOFT_TIMEOUT": "20s"}, "PAGE_SOFT_TIMEOUT"},
		{"negative retries", map[string]string{"REMOTE_MAX_RETRIES": "-1"}, "REMOTE_MAX_RETRIES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("REMOTE_STORE_URL", "https://script.example/exec")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error about %s, got %v", tt.want, err)
			}
		})
	}
}

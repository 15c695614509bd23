package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/IgorGrieder/linkhub/internal/config"
	"github.com/IgorGrieder/linkhub/internal/storage/file"
	"github.com/IgorGrieder/linkhub/internal/storage/memory"
)

func testConfig(driver, path string) *config.Config {
	return &config.Config{
		App:     config.AppConfig{Name: "linkhub-test"},
		Remote:  config.RemoteConfig{URL: "http://127.0.0.1:1/exec", Timeout: time.Second},
		Cache:   config.CacheConfig{ProfileTTL: 5 * time.Minute, LinksTTL: 3 * time.Minute},
		Page:    config.PageConfig{SoftTimeout: 10 * time.Second, HardTimeout: 15 * time.Second},
		Storage: config.StorageConfig{Driver: driver, Path: path},
	}
}

func TestNew_Storage(t *testing.T) {
	a, err := New(testConfig(config.StorageMemory, ""), ModeGateway)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := a.Storage.(*memory.Store); !ok {
		t.Errorf("storage = %T", a.Storage)
	}
	if err := a.Close(); err != nil {
		t.Error(err)
	}

	a, err = New(testConfig(config.StorageFile, filepath.Join(t.TempDir(), "s.json")), ModeInteractive)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := a.Storage.(*file.Store); !ok {
		t.Errorf("storage = %T", a.Storage)
	}
	if a.Session == nil || a.Profiles == nil || a.Links == nil || a.Tracker == nil || a.Composer == nil {
		t.Error("services not wired")
	}
	if err := a.Close(); err != nil {
		t.Error(err)
	}
}

package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://jsonplaceholder.typicode.com" {
		t.Fatalf("unexpected base url %q", cfg.BaseURL)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("unexpected request timeout %v", cfg.RequestTimeout)
	}
	if cfg.SyncInterval != 900*time.Second {
		t.Fatalf("unexpected sync interval %v", cfg.SyncInterval)
	}
	if cfg.StoragePath() != cfg.BBoltPath {
		t.Fatalf("expected bbolt path for default storage, got %q", cfg.StoragePath())
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SYNC_INTERVAL", "30")
	t.Setenv("STORAGE_TYPE", "sqlite")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SyncInterval != 30*time.Second {
		t.Fatalf("unexpected sync interval %v", cfg.SyncInterval)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level %q", cfg.LogLevel)
	}
	if cfg.StoragePath() != cfg.SQLitePath {
		t.Fatalf("expected sqlite path, got %q", cfg.StoragePath())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"BASE_URL":                "not a url",
		"REQUEST_TIMEOUT_SECONDS": "0",
		"SYNC_INTERVAL":           "-1",
		"STORAGE_TTL_SECONDS":     "0",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := load(viper.New()); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}

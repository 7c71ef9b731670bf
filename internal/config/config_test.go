package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *IngesterConfig {
	cfg := &IngesterConfig{
		Instance: InstanceConfig{ID: "test-1"},
		Database: DBConfig{
			Host:     "localhost",
			Name:     "trades",
			User:     "ingester",
			Password: "secret",
		},
	}
	cfg.applyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := &IngesterConfig{}
	cfg.applyDefaults()

	if cfg.API.GammaURL != DefaultGammaURL {
		t.Errorf("GammaURL = %q, want %q", cfg.API.GammaURL, DefaultGammaURL)
	}
	if cfg.API.DataURL != DefaultDataURL {
		t.Errorf("DataURL = %q, want %q", cfg.API.DataURL, DefaultDataURL)
	}
	if cfg.API.RateLimit != DefaultRateLimit {
		t.Errorf("RateLimit = %v, want %v", cfg.API.RateLimit, DefaultRateLimit)
	}
	if cfg.API.MaxRetries != DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", cfg.API.MaxRetries, DefaultMaxRetries)
	}
	if cfg.Ingest.BatchSize != DefaultBatchSize {
		t.Errorf("BatchSize = %d, want %d", cfg.Ingest.BatchSize, DefaultBatchSize)
	}
	if cfg.Ingest.MaxPagesPerInterval != DefaultMaxPages {
		t.Errorf("MaxPagesPerInterval = %d, want %d", cfg.Ingest.MaxPagesPerInterval, DefaultMaxPages)
	}
	if cfg.Ingest.FallbackStartDate != DefaultFallbackStartDate {
		t.Errorf("FallbackStartDate = %q, want %q", cfg.Ingest.FallbackStartDate, DefaultFallbackStartDate)
	}
	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Port = %d, want %d", cfg.Database.Port, DefaultDBPort)
	}
	if cfg.Stream.URL != DefaultStreamURL {
		t.Errorf("Stream.URL = %q, want %q", cfg.Stream.URL, DefaultStreamURL)
	}

	t.Run("existing values preserved", func(t *testing.T) {
		cfg := &IngesterConfig{}
		cfg.API.RateLimit = 2.5
		cfg.Ingest.BatchSize = 100
		cfg.applyDefaults()

		if cfg.API.RateLimit != 2.5 {
			t.Errorf("RateLimit = %v, want 2.5", cfg.API.RateLimit)
		}
		if cfg.Ingest.BatchSize != 100 {
			t.Errorf("BatchSize = %d, want 100", cfg.Ingest.BatchSize)
		}
	})
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() on valid config = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*IngesterConfig)
	}{
		{"missing instance id", func(c *IngesterConfig) { c.Instance.ID = "" }},
		{"zero rate limit", func(c *IngesterConfig) { c.API.RateLimit = 0 }},
		{"missing db host", func(c *IngesterConfig) { c.Database.Host = "" }},
		{"missing db password", func(c *IngesterConfig) { c.Database.Password = "" }},
		{"min conns above max", func(c *IngesterConfig) { c.Database.MinConns = 20 }},
		{"zero batch size", func(c *IngesterConfig) { c.Ingest.BatchSize = 0 }},
		{"zero page size", func(c *IngesterConfig) { c.Ingest.PageSize = 0 }},
		{"zero max pages", func(c *IngesterConfig) { c.Ingest.MaxPagesPerInterval = 0 }},
		{"bad fallback date", func(c *IngesterConfig) { c.Ingest.FallbackStartDate = "Jan 1 2020" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestFallbackStart(t *testing.T) {
	cfg := validConfig()
	cfg.Ingest.FallbackStartDate = "2023-06-15"

	got := cfg.FallbackStart()
	want := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("FallbackStart() = %v, want %v", got, want)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	dir := t.TempDir()
	path := filepath.Join(dir, "ingester.yaml")
	data := `
instance:
  id: test-1
database:
  host: localhost
  name: trades
  user: ingester
  password: ${TEST_DB_PASSWORD}
ingest:
  batch_size: 250
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate() error = %v", err)
	}

	if cfg.Database.Password != "s3cret" {
		t.Errorf("Password = %q, want env-expanded %q", cfg.Database.Password, "s3cret")
	}
	if cfg.Ingest.BatchSize != 250 {
		t.Errorf("BatchSize = %d, want 250", cfg.Ingest.BatchSize)
	}
	// Defaults still fill the gaps.
	if cfg.API.DataURL != DefaultDataURL {
		t.Errorf("DataURL = %q, want default", cfg.API.DataURL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/ingester.yaml")
	if err == nil {
		t.Fatal("Load() = nil error for missing file")
	}
	// Callers that fall back to Default() on a missing file rely on the
	// wrapped error staying recognizable.
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want errors.Is(err, os.ErrNotExist)", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.API.DataURL != DefaultDataURL {
		t.Errorf("DataURL = %q, want %q", cfg.API.DataURL, DefaultDataURL)
	}
	if cfg.API.RateLimit != DefaultRateLimit {
		t.Errorf("RateLimit = %v, want %v", cfg.API.RateLimit, DefaultRateLimit)
	}
	if cfg.Stream.URL != DefaultStreamURL {
		t.Errorf("Stream.URL = %q, want %q", cfg.Stream.URL, DefaultStreamURL)
	}
	if cfg.Stream.BufferSize != DefaultStreamBufferSize {
		t.Errorf("Stream.BufferSize = %d, want %d", cfg.Stream.BufferSize, DefaultStreamBufferSize)
	}
}

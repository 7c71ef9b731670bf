package config

import "time"

// IngesterConfig is the root configuration for an ingester instance.
type IngesterConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	API      APIConfig      `yaml:"api"`
	Database DBConfig       `yaml:"database"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Stream   StreamConfig   `yaml:"stream"`
}

// InstanceConfig identifies this ingester.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds Polymarket API settings.
type APIConfig struct {
	GammaURL     string        `yaml:"gamma_url"`
	DataURL      string        `yaml:"data_url"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	RateLimit    float64       `yaml:"rate_limit"` // requests per second
}

// DBConfig holds the PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// IngestConfig holds pipeline settings.
type IngestConfig struct {
	BatchSize           int    `yaml:"batch_size"`
	PageSize            int    `yaml:"page_size"`
	MaxPagesPerInterval int    `yaml:"max_pages_per_interval"`
	FallbackStartDate   string `yaml:"fallback_start_date"` // YYYY-MM-DD
}

// StreamConfig holds CLOB WebSocket settings for the live tail tool.
type StreamConfig struct {
	URL                string        `yaml:"url"`
	BufferSize         int           `yaml:"buffer_size"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	PingTimeout        time.Duration `yaml:"ping_timeout"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
}

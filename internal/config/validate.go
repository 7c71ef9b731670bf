package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks that all required fields are set and values are valid.
func (c *IngesterConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.API.RateLimit <= 0 {
		return errors.New("api.rate_limit must be > 0")
	}
	if c.API.MaxRetries < 0 {
		return errors.New("api.max_retries must be >= 0")
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if c.Ingest.BatchSize < 1 {
		return errors.New("ingest.batch_size must be >= 1")
	}
	if c.Ingest.PageSize < 1 {
		return errors.New("ingest.page_size must be >= 1")
	}
	if c.Ingest.MaxPagesPerInterval < 1 {
		return errors.New("ingest.max_pages_per_interval must be >= 1")
	}
	if _, err := time.Parse("2006-01-02", c.Ingest.FallbackStartDate); err != nil {
		return fmt.Errorf("ingest.fallback_start_date must be YYYY-MM-DD: %w", err)
	}

	if c.Stream.BufferSize < 1 {
		return errors.New("stream.buffer_size must be >= 1")
	}

	return nil
}

// FallbackStart returns the parsed fallback start date. Call Validate first.
func (c *IngesterConfig) FallbackStart() time.Time {
	t, _ := time.Parse("2006-01-02", c.Ingest.FallbackStartDate)
	return t.UTC()
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

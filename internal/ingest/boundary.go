package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/rickgao/polymarket-history/internal/api"
	"github.com/rickgao/polymarket-history/internal/interval"
)

// MetadataSource looks up the Gamma market description.
type MetadataSource interface {
	GetMarketInfo(ctx context.Context, marketID string) (api.MarketInfo, error)
}

// creationDateFields is the ordered list of Gamma fields probed for a market
// creation time. The payload's field naming has changed across API versions;
// the first present, parseable field wins.
var creationDateFields = []string{
	"createdAt",
	"created_at",
	"startDate",
	"start_date",
	"created",
}

// BoundaryResolver determines the earliest timestamp to ingest from.
//
// Precedence: market metadata, then the oldest stored trade minus a one-day
// safety margin, then the configured fallback date. Resolution never fails;
// the fallback is always usable.
type BoundaryResolver struct {
	meta     MetadataSource
	store    Store
	fallback time.Time
	logger   *slog.Logger
}

// NewBoundaryResolver creates a resolver.
func NewBoundaryResolver(meta MetadataSource, store Store, fallback time.Time, logger *slog.Logger) *BoundaryResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &BoundaryResolver{
		meta:     meta,
		store:    store,
		fallback: fallback.UTC(),
		logger:   logger,
	}
}

// Resolve returns the start boundary for a market.
func (r *BoundaryResolver) Resolve(ctx context.Context, marketID string) time.Time {
	strategies := []struct {
		name string
		fn   func(context.Context, string) (time.Time, bool)
	}{
		{"market metadata", r.fromMetadata},
		{"oldest stored trade", r.fromStore},
	}

	for _, s := range strategies {
		if t, ok := s.fn(ctx, marketID); ok {
			r.logger.Debug("start boundary resolved",
				"market", marketID,
				"source", s.name,
				"start", t,
			)
			return t
		}
	}

	r.logger.Debug("start boundary resolved",
		"market", marketID,
		"source", "configured fallback",
		"start", r.fallback,
	)
	return r.fallback
}

func (r *BoundaryResolver) fromMetadata(ctx context.Context, marketID string) (time.Time, bool) {
	info, err := r.meta.GetMarketInfo(ctx, marketID)
	if err != nil {
		r.logger.Debug("market metadata unavailable", "market", marketID, "error", err)
		return time.Time{}, false
	}

	for _, field := range creationDateFields {
		raw, ok := info[field]
		if !ok {
			continue
		}
		if t, ok := api.ParseFlexibleTime(raw); ok {
			return t, true
		}
	}

	return time.Time{}, false
}

func (r *BoundaryResolver) fromStore(ctx context.Context, marketID string) (time.Time, bool) {
	ts, ok, err := r.store.OldestTimestamp(ctx, marketID)
	if err != nil {
		r.logger.Debug("oldest timestamp lookup failed", "market", marketID, "error", err)
		return time.Time{}, false
	}
	if !ok {
		return time.Time{}, false
	}

	// One day back from the earliest stored trade, in case the previous run
	// missed trades just before it.
	return time.Unix(ts, 0).UTC().Add(-interval.Day), true
}

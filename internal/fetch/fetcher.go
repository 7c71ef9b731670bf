// Package fetch retrieves the complete trade set for one daily interval.
//
// The Data-API's offset pagination goes stale once the cumulative offset
// grows past roughly a thousand rows, so pagination is restarted from offset
// zero inside every interval and capped at a configured page depth. The
// server is asked to filter by window, but the window is re-checked
// client-side on every row regardless: stale pages can leak rows from
// outside the requested range.
package fetch

import (
	"context"
	"log/slog"

	"github.com/rickgao/polymarket-history/internal/api"
	"github.com/rickgao/polymarket-history/internal/interval"
	"github.com/rickgao/polymarket-history/internal/model"
	"github.com/rickgao/polymarket-history/internal/ratelimit"
)

// Source is the paged trade query the fetcher consumes.
type Source interface {
	GetTrades(ctx context.Context, q api.TradeQuery) ([]api.APITrade, error)
}

// Config holds fetcher settings.
type Config struct {
	PageSize int // Rows per request
	MaxPages int // Pagination depth cap per interval
}

// Result is the outcome of fetching one interval.
type Result struct {
	Trades []model.Trade

	// Truncated is set when the page-depth cap was reached before a short
	// page; the interval may hold more trades than were returned.
	Truncated bool

	// Failed is set when a request ultimately failed after retries. An empty
	// Trades slice with Failed set does not mean the interval is empty.
	Failed bool
}

// Fetcher pulls all trades inside one interval, one rate-limited page at a
// time.
type Fetcher struct {
	cfg     Config
	src     Source
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// New creates a Fetcher.
func New(cfg Config, src Source, limiter *ratelimit.Limiter, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		cfg:     cfg,
		src:     src,
		limiter: limiter,
		logger:  logger,
	}
}

// Fetch retrieves every trade whose timestamp lies in [iv.Start, iv.End).
func (f *Fetcher) Fetch(ctx context.Context, marketID string, iv interval.Interval) Result {
	var res Result
	offset := 0

	for page := 0; page < f.cfg.MaxPages; page++ {
		if err := f.limiter.Wait(ctx); err != nil {
			res.Failed = true
			return res
		}

		trades, err := f.src.GetTrades(ctx, api.TradeQuery{
			Market:  marketID,
			Limit:   f.cfg.PageSize,
			Offset:  offset,
			StartTS: iv.Start.Unix(),
			EndTS:   iv.End.Unix(),
		})
		if err != nil {
			f.logger.Warn("interval fetch failed; results for this window are unknown, not empty",
				"market", marketID,
				"start", iv.Start,
				"end", iv.End,
				"offset", offset,
				"error", err,
			)
			res.Failed = true
			return res
		}

		for _, t := range trades {
			m := t.ToModel(marketID)
			if !m.Valid() || !iv.Contains(m.Timestamp) {
				continue
			}
			res.Trades = append(res.Trades, m)
		}

		if len(trades) < f.cfg.PageSize {
			return res
		}
		offset += len(trades)
	}

	// Never saw a short page within the cap.
	res.Truncated = true
	f.logger.Warn("interval pagination capped; window possibly truncated",
		"market", marketID,
		"start", iv.Start,
		"end", iv.End,
		"pages", f.cfg.MaxPages,
	)
	return res
}

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/polymarket-history/internal/dedup"
	"github.com/rickgao/polymarket-history/internal/fetch"
	"github.com/rickgao/polymarket-history/internal/interval"
	"github.com/rickgao/polymarket-history/internal/model"
)

// Store is the durable trade store consumed by the pipeline.
type Store interface {
	InsertBatch(ctx context.Context, trades []model.Trade) (inserted, conflicts int, err error)
	ExistingSignatures(ctx context.Context, marketID string) (map[string]struct{}, error)
	OldestTimestamp(ctx context.Context, marketID string) (ts int64, ok bool, err error)
}

// Fetcher retrieves all trades for one interval.
type Fetcher interface {
	Fetch(ctx context.Context, marketID string, iv interval.Interval) fetch.Result
}

// ProgressFunc is invoked synchronously after each interval. It must not
// block; no network calls.
type ProgressFunc func(intervalIndex, totalIntervals, newCount, duplicateCount int)

// Config holds orchestrator settings.
type Config struct {
	BatchSize int          // Flush threshold for the persistence batch
	Progress  ProgressFunc // Optional progress hook
}

// RunResult is the structured outcome of one ingestion run.
type RunResult struct {
	RunID          uuid.UUID
	NewCount       int
	DuplicateCount int

	// TruncatedIntervals may hold more trades than were fetched (pagination
	// depth cap reached). Never silently dropped from the report.
	TruncatedIntervals []interval.Interval

	// FailedIntervals saw no data because fetching failed, not because the
	// window is known to be empty.
	FailedIntervals []interval.Interval

	// RemainingIntervals were not processed because the run was cancelled.
	RemainingIntervals []interval.Interval

	// Completed is true when every interval was processed. A subsequent run
	// resumes an incomplete ingestion by re-deriving state from storage.
	Completed bool
}

// Orchestrator runs the ingestion pipeline for one market.
type Orchestrator struct {
	cfg      Config
	boundary *BoundaryResolver
	fetcher  Fetcher
	store    Store
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(cfg Config, boundary *BoundaryResolver, fetcher Fetcher, store Store, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		cfg:      cfg,
		boundary: boundary,
		fetcher:  fetcher,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run ingests the full history of marketID up to now.
//
// The only error condition is durable persistence failure (including the
// startup signature seed); everything else, fetch failures and truncation
// included, is reported in the RunResult. Cancellation between intervals
// flushes the current batch and returns a partial result with nil error.
func (o *Orchestrator) Run(ctx context.Context, marketID string) (RunResult, error) {
	res := RunResult{RunID: uuid.New()}
	sigs := dedup.NewSignatureStore()

	// Boundary resolution and signature seeding are independent lookups.
	var start time.Time
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start = o.boundary.Resolve(gctx, marketID)
		return nil
	})
	g.Go(func() error {
		existing, err := o.store.ExistingSignatures(gctx, marketID)
		if err != nil {
			return fmt.Errorf("seed signatures: %w", err)
		}
		sigs.Seed(existing)
		return nil
	})
	if err := g.Wait(); err != nil {
		return res, err
	}

	intervals := interval.Generate(start, o.now().UTC())
	if len(intervals) == 0 {
		res.Completed = true
		return res, nil
	}

	o.logger.Info("ingestion starting",
		"run_id", res.RunID,
		"market", marketID,
		"start", start,
		"intervals", len(intervals),
		"seeded_signatures", sigs.Len(),
	)

	batch := make([]model.Trade, 0, o.cfg.BatchSize)

	flush := func(ctx context.Context) error {
		if len(batch) == 0 {
			return nil
		}
		inserted, conflicts, err := o.store.InsertBatch(ctx, batch)
		if err != nil {
			return fmt.Errorf("persist batch: %w", err)
		}
		o.logger.Debug("batch persisted",
			"run_id", res.RunID,
			"inserted", inserted,
			"conflicts", conflicts,
		)
		batch = batch[:0]
		return nil
	}

	// Oldest first, so an interrupted run leaves a contiguous prefix of
	// history behind.
	for i, iv := range intervals {
		if ctx.Err() != nil {
			// Cooperative cancellation between intervals: flush what the last
			// completed interval produced, report the rest as unprocessed.
			if err := flush(context.WithoutCancel(ctx)); err != nil {
				return res, err
			}
			res.RemainingIntervals = intervals[i:]
			o.logger.Warn("run cancelled; partial completion",
				"run_id", res.RunID,
				"processed", i,
				"remaining", len(res.RemainingIntervals),
			)
			return res, nil
		}

		fr := o.fetcher.Fetch(ctx, marketID, iv)
		if fr.Failed {
			// A bad day never aborts the run, but its absence of data must not
			// read as "day confirmed empty".
			res.FailedIntervals = append(res.FailedIntervals, iv)
			o.logger.Warn("interval failed, continuing",
				"run_id", res.RunID,
				"start", iv.Start,
				"end", iv.End,
			)
		}
		if fr.Truncated {
			res.TruncatedIntervals = append(res.TruncatedIntervals, iv)
		}

		for _, tr := range fr.Trades {
			if !sigs.CheckAndAdd(tr.Signature()) {
				res.DuplicateCount++
				continue
			}
			res.NewCount++
			batch = append(batch, tr)
			if len(batch) >= o.cfg.BatchSize {
				if err := flush(ctx); err != nil {
					return res, err
				}
			}
		}

		if o.cfg.Progress != nil {
			o.cfg.Progress(i, len(intervals), res.NewCount, res.DuplicateCount)
		}
	}

	if err := flush(ctx); err != nil {
		return res, err
	}

	res.Completed = true
	o.logger.Info("ingestion complete",
		"run_id", res.RunID,
		"market", marketID,
		"new", res.NewCount,
		"duplicates", res.DuplicateCount,
		"truncated_intervals", len(res.TruncatedIntervals),
		"failed_intervals", len(res.FailedIntervals),
	)
	return res, nil
}

package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/polymarket-history/internal/model"
)

// TradeStore persists trades and answers the queries the ingestion pipeline
// needs to resume: existing signatures and the oldest stored timestamp,
// scoped by market.
type TradeStore struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// New creates a TradeStore.
func New(db *pgxpool.Pool, logger *slog.Logger) *TradeStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TradeStore{
		db:     db,
		logger: logger,
	}
}

// tradeArgs maps a trade to the insert parameter list.
func tradeArgs(t model.Trade) []any {
	return []any{
		t.MarketID,
		t.Signature(),
		t.Timestamp,
		t.Price.String(),
		t.Size.String(),
		t.Trader,
		t.Side,
		t.OutcomeIndex,
		t.TxHash,
	}
}

// InsertBatch inserts trades using pgx.Batch with ON CONFLICT DO NOTHING.
// Returns how many rows were inserted and how many were conflicts.
func (s *TradeStore) InsertBatch(ctx context.Context, trades []model.Trade) (inserted, conflicts int, err error) {
	if len(trades) == 0 {
		return 0, 0, nil
	}

	start := time.Now()

	batch := &pgx.Batch{}
	for _, t := range trades {
		batch.Queue(`
			INSERT INTO trades (market_id, signature, ts, price, size, trader, side, outcome_index, tx_hash)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (market_id, signature) DO NOTHING
		`, tradeArgs(t)...)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range trades {
		ct, err := results.Exec()
		if err != nil {
			return 0, 0, fmt.Errorf("insert batch: %w", err)
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	inserted = len(trades) - conflicts

	s.logger.Debug("flushed trades",
		"count", len(trades),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)

	return inserted, conflicts, nil
}

// ExistingSignatures returns the set of signatures already stored for a market.
func (s *TradeStore) ExistingSignatures(ctx context.Context, marketID string) (map[string]struct{}, error) {
	rows, err := s.db.Query(ctx, `SELECT signature FROM trades WHERE market_id = $1`, marketID)
	if err != nil {
		return nil, fmt.Errorf("query signatures: %w", err)
	}
	defer rows.Close()

	sigs := make(map[string]struct{})
	for rows.Next() {
		var sig string
		if err := rows.Scan(&sig); err != nil {
			return nil, fmt.Errorf("scan signature: %w", err)
		}
		sigs[sig] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signatures: %w", err)
	}

	return sigs, nil
}

// OldestTimestamp returns the oldest stored trade timestamp for a market.
// ok is false when the market has no stored trades.
func (s *TradeStore) OldestTimestamp(ctx context.Context, marketID string) (ts int64, ok bool, err error) {
	var oldest *int64
	row := s.db.QueryRow(ctx, `SELECT MIN(ts) FROM trades WHERE market_id = $1`, marketID)
	if err := row.Scan(&oldest); err != nil {
		return 0, false, fmt.Errorf("query oldest timestamp: %w", err)
	}
	if oldest == nil {
		return 0, false, nil
	}
	return *oldest, true, nil
}

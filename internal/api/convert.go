package api

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rickgao/polymarket-history/internal/model"
)

// ToModel converts an APITrade to model.Trade. marketID is the condition ID
// the query was scoped to; it wins over the row's own conditionId, which the
// Data-API sometimes omits.
func (t *APITrade) ToModel(marketID string) model.Trade {
	if t.ConditionID != "" {
		marketID = t.ConditionID
	}

	side := strings.ToLower(t.Side)
	if side == "" {
		side = "unknown"
	}

	return model.Trade{
		MarketID:     marketID,
		Timestamp:    t.Timestamp,
		Price:        t.Price,
		Size:         t.Size,
		Trader:       t.ProxyWallet,
		Side:         side,
		OutcomeIndex: t.OutcomeIndex,
		TxHash:       t.TransactionHash,
	}
}

// ParseFlexibleTime parses a Gamma date field, which may be a numeric epoch
// (seconds) or an ISO 8601 string. Returns false for anything else.
func ParseFlexibleTime(raw json.RawMessage) (time.Time, bool) {
	var epoch int64
	if err := json.Unmarshal(raw, &epoch); err == nil && epoch > 0 {
		return time.Unix(epoch, 0).UTC(), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	// Some fields drop the timezone.
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), true
	}

	return time.Time{}, false
}

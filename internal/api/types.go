package api

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// APITrade represents a trade row from the Data-API /trades endpoint.
type APITrade struct {
	ProxyWallet     string          `json:"proxyWallet"`
	Side            string          `json:"side"`
	Asset           string          `json:"asset"`
	ConditionID     string          `json:"conditionId"`
	Size            decimal.Decimal `json:"size"`
	Price           decimal.Decimal `json:"price"`
	Timestamp       int64           `json:"timestamp"`
	OutcomeIndex    int             `json:"outcomeIndex"`
	TransactionHash string          `json:"transactionHash"`
}

// MarketInfo is the raw Gamma market description. Field names in this payload
// have shifted over time, so values are kept raw and probed by name.
type MarketInfo map[string]json.RawMessage

// StringField returns the named field decoded as a string, if present.
func (m MarketInfo) StringField(name string) (string, bool) {
	raw, ok := m[name]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// TradeQuery configures a Data-API /trades request.
type TradeQuery struct {
	Market  string // Condition ID (required)
	Limit   int    // Page size
	Offset  int    // Rows to skip
	StartTS int64  // Window start (seconds since epoch), 0 = unbounded
	EndTS   int64  // Window end (seconds since epoch, exclusive), 0 = unbounded
}

package model

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Trade represents one executed trade fetched from the Data-API.
// Trades are immutable once fetched.
type Trade struct {
	MarketID     string          // Market condition ID (0x-prefixed)
	Timestamp    int64           // Execution time (seconds since epoch)
	Price        decimal.Decimal // Execution price in USDC
	Size         decimal.Decimal // Size in outcome shares
	Trader       string          // Proxy wallet address of the taker
	Side         string          // "buy" or "sell" (lowercased), "unknown" if absent
	OutcomeIndex int             // Outcome leg the trade was on
	TxHash       string          // Settlement transaction hash, if reported
}

// Signature returns the deduplication key for the trade.
//
// The Data-API exposes no stable per-trade ID, so identity is derived from
// (timestamp, price, size, trader). Two distinct trades that agree on all four
// fields collide; at one-second timestamp resolution this is rare enough to be
// an accepted approximation.
func (t Trade) Signature() string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(t.Timestamp, 10))
	b.WriteByte('|')
	b.WriteString(t.Price.String())
	b.WriteByte('|')
	b.WriteString(t.Size.String())
	b.WriteByte('|')
	b.WriteString(t.Trader)
	return b.String()
}

// Valid reports whether the trade carries the fields required for ingestion.
// The Data-API occasionally returns rows with a zero timestamp or empty
// trader; those cannot be deduplicated and are dropped at parse time.
func (t Trade) Valid() bool {
	return t.Timestamp > 0 && t.Trader != ""
}

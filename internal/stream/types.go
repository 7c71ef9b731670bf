package stream

import (
	"encoding/json"
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no traffic)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// ChannelMarket is the public market-data channel.
const ChannelMarket = "market"

// Market event types.
const (
	EventBook           = "book"
	EventPriceChange    = "price_change"
	EventLastTradePrice = "last_trade_price"
	EventTickSizeChange = "tick_size_change"
)

// TimestampedMessage wraps raw message data with a receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// SubscribeCommand subscribes to a channel for a set of token IDs.
type SubscribeCommand struct {
	AssetIDs []string `json:"assets_ids"`
	Type     string   `json:"type"`
}

// MarketEvent is one event from the market channel. Numeric fields arrive as
// strings on the wire and are kept that way; the stream is observational.
type MarketEvent struct {
	EventType  string `json:"event_type"`
	AssetID    string `json:"asset_id"`
	Market     string `json:"market"` // condition ID
	Price      string `json:"price"`
	Size       string `json:"size"`
	Side       string `json:"side"`
	Timestamp  string `json:"timestamp"` // milliseconds since epoch
	FeeRateBps string `json:"fee_rate_bps"`
}

// DecodeEvents parses a market channel payload. The server sends either a
// single event object or an array of them.
func DecodeEvents(data []byte) ([]MarketEvent, error) {
	trimmed := firstNonSpace(data)
	if trimmed == '[' {
		var events []MarketEvent
		if err := json.Unmarshal(data, &events); err != nil {
			return nil, err
		}
		return events, nil
	}

	var ev MarketEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return []MarketEvent{ev}, nil
}

func firstNonSpace(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL          string        // WebSocket URL (e.g., wss://ws-subscriptions-clob.polymarket.com/ws/market)
	PingInterval time.Duration // How often to send the keepalive PING frame
	StaleTimeout time.Duration // Max time without any traffic before the connection is stale
	WriteTimeout time.Duration // Write deadline for sends
	BufferSize   int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults. The server drops clients
// that go quiet, so the keepalive interval is short.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingInterval: 10 * time.Second,
		StaleTimeout: 30 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   1000,
	}
}

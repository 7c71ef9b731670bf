package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// GetTrades fetches one page of trades from the Data-API.
//
// Degraded responses (indexer errors reported inside a 200 body) are retried
// like transport failures. After the retry budget is spent the error is
// returned; callers must not treat a failed page as "no trades exist".
func (c *Client) GetTrades(ctx context.Context, q TradeQuery) ([]APITrade, error) {
	query := url.Values{}
	query.Set("market", q.Market)

	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		query.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.StartTS > 0 {
		query.Set("startTs", strconv.FormatInt(q.StartTS, 10))
	}
	if q.EndTS > 0 {
		query.Set("endTs", strconv.FormatInt(q.EndTS, 10))
	}

	var trades []APITrade
	err := c.get(ctx, "get trades", c.dataURL, "/trades", query, func(body []byte) error {
		return parseTradesBody(body, &trades)
	})
	if err != nil {
		return nil, fmt.Errorf("get trades %s: %w", q.Market, err)
	}

	return trades, nil
}

// parseTradesBody decodes a /trades response. The endpoint returns either a
// bare array, an object wrapping the array in "data", or an object carrying
// an error report instead of data.
func parseTradesBody(body []byte, out *[]APITrade) error {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, out); err != nil {
			return fmt.Errorf("unmarshal trades: %w", err)
		}
		return nil
	}

	var wrapped struct {
		Data   []APITrade        `json:"data"`
		Error  string            `json:"error"`
		Errors []json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return fmt.Errorf("unmarshal trades: %w", err)
	}

	if wrapped.Error != "" || len(wrapped.Errors) > 0 {
		msg := wrapped.Error
		if msg == "" {
			parts := make([]string, 0, len(wrapped.Errors))
			for _, raw := range wrapped.Errors {
				parts = append(parts, string(raw))
			}
			msg = strings.Join(parts, "; ")
		}
		if isDegradedMessage(msg) {
			return &DegradedError{Message: msg}
		}
		return fmt.Errorf("data api error: %s", msg)
	}

	*out = wrapped.Data
	return nil
}

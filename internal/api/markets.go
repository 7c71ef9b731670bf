package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// GetMarketInfo fetches the Gamma market description for a numeric market ID.
func (c *Client) GetMarketInfo(ctx context.Context, marketID string) (MarketInfo, error) {
	var info MarketInfo
	err := c.get(ctx, "get market info", c.gammaURL, "/markets/"+marketID, nil, func(body []byte) error {
		return info.unmarshal(body)
	})
	if err != nil {
		return nil, fmt.Errorf("get market info %s: %w", marketID, err)
	}
	return info, nil
}

// ResolveConditionID maps a market identifier to the condition ID the Data-API
// keys trades by. A 0x-prefixed identifier already is one; a numeric Gamma ID
// is resolved through the market description.
func (c *Client) ResolveConditionID(ctx context.Context, marketID string) (string, error) {
	if strings.HasPrefix(marketID, "0x") {
		return marketID, nil
	}

	info, err := c.GetMarketInfo(ctx, marketID)
	if err != nil {
		return "", err
	}

	conditionID, ok := info.StringField("conditionId")
	if !ok || conditionID == "" {
		return "", fmt.Errorf("conditionId not found for market %s", marketID)
	}
	return conditionID, nil
}

func (m *MarketInfo) unmarshal(body []byte) error {
	if err := json.Unmarshal(body, m); err != nil {
		return fmt.Errorf("unmarshal market info: %w", err)
	}
	return nil
}

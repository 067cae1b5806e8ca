package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dmarsh/market-mirror/internal/model"
)

// TickerSnapshot fetches the full market snapshot from the ticker endpoint.
func (c *Client) TickerSnapshot(ctx context.Context, ep *Endpoint) (model.Snapshot, error) {
	body, err := c.Request(ctx, ep, nil)
	if err != nil {
		return nil, err
	}

	var wire map[string]tickerEntryWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return toSnapshot(wire), nil
}

// OrderBook fetches the order book for one pair at the given depth.
func (c *Client) OrderBook(ctx context.Context, ep *Endpoint, pair string, depth int) (model.OrderBook, error) {
	body, err := c.Request(ctx, ep, map[string]string{
		"pair":  pair,
		"depth": strconv.Itoa(depth),
	})
	if err != nil {
		return model.OrderBook{}, err
	}

	var wire orderBookWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return model.OrderBook{}, fmt.Errorf("unmarshal order book: %w", err)
	}

	return model.OrderBook{
		Asks:   toBookSide(wire.Asks),
		Bids:   toBookSide(wire.Bids),
		Frozen: bool(wire.IsFrozen),
		Seq:    wire.Seq,
	}, nil
}

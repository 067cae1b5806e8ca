package api

import (
	"bytes"

	"github.com/dmarsh/market-mirror/internal/model"
)

// flexBool absorbs the wire's inconsistent boolean encoding: "0"/"1"
// strings, bare 0/1 numbers, or true/false.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	v := bytes.Trim(bytes.TrimSpace(data), `"`)
	switch string(v) {
	case "1", "true":
		*f = true
	default:
		*f = false
	}
	return nil
}

// toSnapshot converts the wire snapshot into the normalized model form.
func toSnapshot(wire map[string]tickerEntryWire) model.Snapshot {
	snap := make(model.Snapshot, len(wire))
	for pair, e := range wire {
		snap[pair] = model.SnapshotEntry{
			ID:     e.ID,
			Last:   e.Last,
			Frozen: bool(e.IsFrozen),
		}
	}
	return snap
}

// toBookSide converts positional [price, size] pairs to typed levels.
// Malformed levels are skipped, not fatal.
func toBookSide(levels [][]any) []model.PriceLevel {
	result := make([]model.PriceLevel, 0, len(levels))
	for _, level := range levels {
		if len(level) < 2 {
			continue
		}
		price, ok := level[0].(string)
		if !ok {
			continue
		}
		size, ok := level[1].(float64)
		if !ok {
			continue
		}
		result = append(result, model.PriceLevel{
			Price: price,
			Size:  size,
		})
	}
	return result
}

package push

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmarsh/market-mirror/internal/model"
)

// Frame is one decoded inbound message. Inbound traffic is positional JSON
// arrays [channel, seqOrFlag, ...payload]; each reserved channel gets its
// own variant and anything unrecognized falls through to UnknownFrame.
type Frame interface {
	frame()
}

// HeartbeatFrame is the server's keep-alive.
type HeartbeatFrame struct{}

// AckFrame acknowledges a subscribe or unsubscribe command.
type AckFrame struct {
	Channel    int64
	Subscribed bool // true = subscribed, false = unsubscribed
}

// TickerFrame carries zero or more per-market partial updates.
type TickerFrame struct {
	Seq     int64
	Updates []model.TickerUpdate
}

// VolumeFrame carries the 24h rolling volume payload.
type VolumeFrame struct {
	Seq     int64
	Payload json.RawMessage
}

// AccountFrame carries account notifications.
type AccountFrame struct {
	Payload json.RawMessage
}

// BookFrame carries a per-market order-book subscription message.
type BookFrame struct {
	Channel int64
	Seq     int64
	Payload json.RawMessage
}

// UnknownFrame is the fallback for structurally valid frames on channels or
// shapes this process does not understand.
type UnknownFrame struct {
	Channel int64
	Raw     json.RawMessage
}

func (HeartbeatFrame) frame() {}
func (AckFrame) frame()       {}
func (TickerFrame) frame()    {}
func (VolumeFrame) frame()    {}
func (AccountFrame) frame()   {}
func (BookFrame) frame()      {}
func (UnknownFrame) frame()   {}

// DecodeFrame decodes one inbound wire frame into its tagged variant.
func DecodeFrame(data []byte) (Frame, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return nil, fmt.Errorf("frame is not an array: %w", err)
	}
	if len(parts) == 0 {
		return nil, errors.New("empty frame")
	}

	channel, err := coerceChannel(parts[0])
	if err != nil {
		return nil, fmt.Errorf("bad channel id: %w", err)
	}

	if channel == ChannelHeartbeat {
		return HeartbeatFrame{}, nil
	}

	// [channel, 1] / [channel, 0]: subscribe / unsubscribe acknowledgement.
	// Unsubscribe acks sometimes quote the channel id; coerceChannel above
	// already normalized it.
	if len(parts) == 2 {
		var flag int
		if err := json.Unmarshal(parts[1], &flag); err == nil && (flag == 0 || flag == 1) {
			return AckFrame{Channel: channel, Subscribed: flag == 1}, nil
		}
		return UnknownFrame{Channel: channel, Raw: data}, nil
	}

	if len(parts) < 3 {
		return UnknownFrame{Channel: channel, Raw: data}, nil
	}

	var seq int64
	json.Unmarshal(parts[1], &seq)

	switch channel {
	case ChannelTicker:
		updates := make([]model.TickerUpdate, 0, len(parts)-2)
		for _, raw := range parts[2:] {
			u, err := parseTickerEntry(raw)
			if err != nil {
				return nil, fmt.Errorf("ticker entry: %w", err)
			}
			updates = append(updates, u)
		}
		return TickerFrame{Seq: seq, Updates: updates}, nil

	case ChannelVolume:
		return VolumeFrame{Seq: seq, Payload: parts[2]}, nil

	case ChannelAccount:
		return AccountFrame{Payload: parts[2]}, nil

	default:
		// Any other numeric channel is a per-market book subscription.
		return BookFrame{Channel: channel, Seq: seq, Payload: parts[2]}, nil
	}
}

// Positional offsets within a ticker entry:
// [id, last, lowestAsk, highestBid, percentChange, baseVolume, quoteVolume,
//  isFrozen, high24hr, low24hr]
const (
	tickerFieldID     = 0
	tickerFieldLast   = 1
	tickerFieldFrozen = 7
	tickerEntryMinLen = 8
)

// parseTickerEntry decodes one positional ticker record.
func parseTickerEntry(raw json.RawMessage) (model.TickerUpdate, error) {
	var fields []any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.TickerUpdate{}, fmt.Errorf("not an array: %w", err)
	}
	if len(fields) < tickerEntryMinLen {
		return model.TickerUpdate{}, fmt.Errorf("entry has %d fields, want >= %d", len(fields), tickerEntryMinLen)
	}

	id, err := coerceInt(fields[tickerFieldID])
	if err != nil {
		return model.TickerUpdate{}, fmt.Errorf("market id: %w", err)
	}

	last, ok := fields[tickerFieldLast].(string)
	if !ok {
		return model.TickerUpdate{}, fmt.Errorf("last price is %T, want string", fields[tickerFieldLast])
	}

	return model.TickerUpdate{
		ID:     id,
		Last:   last,
		Frozen: coerceFlag(fields[tickerFieldFrozen]),
	}, nil
}

// coerceChannel normalizes a channel id that may arrive as a JSON number or
// a quoted string.
func coerceChannel(raw json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseInt(s, 10, 64)
	}
	return 0, fmt.Errorf("channel id %s is neither number nor string", raw)
}

// coerceInt normalizes an already-decoded value that may be a number or a
// numeric string.
func coerceInt(v any) (int64, error) {
	switch x := v.(type) {
	case float64:
		return int64(x), nil
	case string:
		return strconv.ParseInt(x, 10, 64)
	default:
		return 0, fmt.Errorf("%T is neither number nor string", v)
	}
}

// coerceFlag normalizes the frozen indicator, which arrives as "0"/"1"
// strings, bare numbers, or booleans depending on the frame.
func coerceFlag(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x == "1" || x == "true"
	default:
		return false
	}
}

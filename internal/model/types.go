package model

import "strings"

// -----------------------------------------------------------------------------
// Registry Types
// -----------------------------------------------------------------------------

// Market is one trading pair's locally mirrored state.
type Market struct {
	ID       int64  // Remote market id, unique within a registry
	Base     string // Base currency code (e.g. "ETH")
	Quote    string // Quote currency code (e.g. "BTC")
	Label    string // Display label, always Base + "/" + Quote
	Last     string // Last traded price, wire textual form (e.g. "0.052")
	IsActive bool   // Inverse of the remote "frozen" indicator
}

// UnknownCode is the placeholder base/quote for markets first seen via a
// push update, before any snapshot has described them.
const UnknownCode = "UNKNOWN"

// NewMarket builds a Market from a snapshot entry keyed by pair name.
func NewMarket(pair string, e SnapshotEntry) Market {
	base, quote := SplitPair(pair)
	return Market{
		ID:       e.ID,
		Base:     base,
		Quote:    quote,
		Label:    PairLabel(base, quote),
		Last:     e.Last,
		IsActive: !e.Frozen,
	}
}

// PlaceholderMarket builds a degraded-display Market for a push update about
// an id the registry has never seen. Not an error on the wire protocol.
func PlaceholderMarket(u TickerUpdate) Market {
	return Market{
		ID:       u.ID,
		Base:     UnknownCode,
		Quote:    UnknownCode,
		Label:    PairLabel(UnknownCode, UnknownCode),
		Last:     u.Last,
		IsActive: !u.Frozen,
	}
}

// SplitPair splits a wire pair name ("BTC_ETH") into base and quote.
// The wire format is quote-first: "BTC_ETH" means ETH priced in BTC.
// A name without an underscore yields the whole name as base and an
// empty quote.
func SplitPair(pair string) (base, quote string) {
	quote, base, ok := strings.Cut(pair, "_")
	if !ok {
		return pair, ""
	}
	return base, quote
}

// PairLabel derives the display label. Pure function of base and quote.
func PairLabel(base, quote string) string {
	return base + "/" + quote
}

// -----------------------------------------------------------------------------
// Transport Output Shapes
// -----------------------------------------------------------------------------

// SnapshotEntry is one market's normalized record from the poll endpoint.
type SnapshotEntry struct {
	ID     int64
	Last   string
	Frozen bool
}

// Snapshot is a full point-in-time dump from the poll endpoint, keyed by
// wire pair name.
type Snapshot map[string]SnapshotEntry

// TickerUpdate is one market's normalized partial record from the push
// channel. Only the tracked fields are carried.
type TickerUpdate struct {
	ID     int64
	Last   string
	Frozen bool
}

// PriceLevel is one level of an order book.
type PriceLevel struct {
	Price string // Textual, same convention as Market.Last
	Size  float64
}

// OrderBook is the result of an order-book fetch for a single pair.
type OrderBook struct {
	Asks   []PriceLevel
	Bids   []PriceLevel
	Frozen bool
	Seq    int64
}

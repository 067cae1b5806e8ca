package api

// tickerEntryWire is one market's entry in the snapshot response, keyed by
// pair name in the enclosing object.
type tickerEntryWire struct {
	ID            int64    `json:"id"`
	Last          string   `json:"last"`
	LowestAsk     string   `json:"lowestAsk"`
	HighestBid    string   `json:"highestBid"`
	PercentChange string   `json:"percentChange"`
	BaseVolume    string   `json:"baseVolume"`
	QuoteVolume   string   `json:"quoteVolume"`
	IsFrozen      flexBool `json:"isFrozen"`
	High24hr      string   `json:"high24hr"`
	Low24hr       string   `json:"low24hr"`
}

// orderBookWire is the order-book response. Levels arrive as positional
// [price, size] pairs with the price quoted and the size bare.
type orderBookWire struct {
	Asks     [][]any  `json:"asks"`
	Bids     [][]any  `json:"bids"`
	IsFrozen flexBool `json:"isFrozen"`
	Seq      int64    `json:"seq"`
}

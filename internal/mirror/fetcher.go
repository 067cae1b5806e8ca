package mirror

import (
	"context"

	"github.com/dmarsh/market-mirror/internal/api"
	"github.com/dmarsh/market-mirror/internal/model"
)

// APIFetcher binds a request client and its two endpoints into a Fetcher.
// Each endpoint keeps its own single-flight slot, so a slow snapshot fetch
// never blocks a book fetch.
type APIFetcher struct {
	client *api.Client
	ticker *api.Endpoint
	books  *api.Endpoint
}

// NewAPIFetcher creates a fetcher over the given endpoint URL templates.
// The books template must contain {pair} and {depth} placeholders.
func NewAPIFetcher(client *api.Client, tickerURL, booksURL string) *APIFetcher {
	return &APIFetcher{
		client: client,
		ticker: api.NewEndpoint("ticker", tickerURL),
		books:  api.NewEndpoint("books", booksURL),
	}
}

func (f *APIFetcher) TickerSnapshot(ctx context.Context) (model.Snapshot, error) {
	return f.client.TickerSnapshot(ctx, f.ticker)
}

func (f *APIFetcher) OrderBook(ctx context.Context, pair string, depth int) (model.OrderBook, error) {
	return f.client.OrderBook(ctx, f.books, pair, depth)
}

// CancelAll aborts any in-flight request on either endpoint.
func (f *APIFetcher) CancelAll() {
	f.ticker.Cancel()
	f.books.Cancel()
}

// Package mirror implements the coordinator that keeps the local market
// registry consistent with the remote exchange.
//
// The coordinator owns the registry, the single-flight request client, the
// push connection, and the poll loop, and is the only place the two data
// sources meet. Rendering is an external collaborator reached exclusively
// through the Observer interface; the core never calls display code
// directly.
package mirror

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmarsh/market-mirror/internal/api"
	"github.com/dmarsh/market-mirror/internal/model"
	"github.com/dmarsh/market-mirror/internal/push"
	"github.com/dmarsh/market-mirror/internal/registry"
	"github.com/dmarsh/market-mirror/internal/scheduler"
)

// Observer receives registry lifecycle events. Implemented by the display
// layer; all methods are invoked synchronously after the registry mutation
// they describe.
type Observer interface {
	// RegistryReset fires once, after the first successful snapshot.
	RegistryReset(markets map[int64]model.Market)

	// DiffApplied fires after every non-nil diff from either source.
	DiffApplied(markets map[int64]model.Market, diff *model.Diff)

	// BooksReceived fires after an order-book fetch resolves.
	BooksReceived(pair string, book model.OrderBook)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) RegistryReset(map[int64]model.Market)            {}
func (NopObserver) DiffApplied(map[int64]model.Market, *model.Diff) {}
func (NopObserver) BooksReceived(string, model.OrderBook)           {}

// Fetcher is the poll-side data source.
type Fetcher interface {
	TickerSnapshot(ctx context.Context) (model.Snapshot, error)
	OrderBook(ctx context.Context, pair string, depth int) (model.OrderBook, error)
}

// Commander is the push-side command channel.
type Commander interface {
	Send(cmd push.Command) error
	Close() error
}

// Config holds coordinator settings.
type Config struct {
	PollInterval time.Duration
	BookDepth    int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval: 10 * time.Second,
		BookDepth:    50,
	}
}

// Mirror coordinates the two transports into one registry.
type Mirror struct {
	cfg      Config
	fetcher  Fetcher
	conn     Commander
	registry *registry.Registry
	observer Observer
	logger   *slog.Logger

	loop *scheduler.Loop
}

// New creates a coordinator. The observer may be nil.
func New(cfg Config, fetcher Fetcher, conn Commander, reg *registry.Registry, observer Observer, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = NopObserver{}
	}

	m := &Mirror{
		cfg:      cfg,
		fetcher:  fetcher,
		conn:     conn,
		registry: reg,
		observer: observer,
		logger:   logger,
	}
	m.loop = scheduler.New(cfg.PollInterval, m.pollCycle, logger)
	return m
}

// StartPolling enables the snapshot poll loop.
func (m *Mirror) StartPolling() {
	m.loop.Start()
}

// StopPolling disables the poll loop and aborts the in-flight cycle.
func (m *Mirror) StopPolling() {
	m.loop.Stop()
}

// Polling reports whether the poll loop is enabled.
func (m *Mirror) Polling() bool {
	return m.loop.Enabled()
}

// Stop shuts the coordinator down: polling stops and the push connection
// closes.
func (m *Mirror) Stop() {
	m.loop.Stop()
	if m.conn != nil {
		m.conn.Close()
	}
	m.logger.Info("mirror stopped")
}

// SubscribeTicker asks the push endpoint for ticker updates.
func (m *Mirror) SubscribeTicker() error {
	return m.conn.Send(push.Subscribe(push.ChannelTicker))
}

// UnsubscribeTicker cancels the ticker subscription.
func (m *Mirror) UnsubscribeTicker() error {
	return m.conn.Send(push.Unsubscribe(push.ChannelTicker))
}

// SubscribeBook subscribes to a per-market order-book channel.
func (m *Mirror) SubscribeBook(channel int64) error {
	return m.conn.Send(push.Subscribe(channel))
}

// UnsubscribeBook cancels a per-market order-book subscription.
func (m *Mirror) UnsubscribeBook(channel int64) error {
	return m.conn.Send(push.Unsubscribe(channel))
}

// FetchBooks fetches one pair's order book and hands it to the observer.
// Benign outcomes (busy endpoint, cooperative cancel) are silent no-ops.
func (m *Mirror) FetchBooks(ctx context.Context, pair string) error {
	book, err := m.fetcher.OrderBook(ctx, pair, m.cfg.BookDepth)
	if err != nil {
		if benign(err) {
			return nil
		}
		m.logger.Warn("book fetch failed", "pair", pair, "error", err)
		return err
	}

	m.observer.BooksReceived(pair, book)
	return nil
}

// pollCycle is one snapshot fetch. The first success resets the registry
// wholesale; every later one goes through the diff engine. A failed cycle
// degrades to a stale display and the next cycle proceeds on schedule.
func (m *Mirror) pollCycle(ctx context.Context) error {
	snap, err := m.fetcher.TickerSnapshot(ctx)
	if err != nil {
		if benign(err) {
			// Indistinguishable from "nothing changed" to observers.
			return nil
		}
		return err
	}

	if !m.registry.Primed() {
		m.registry.Reset(snap)
		m.observer.RegistryReset(m.registry.Markets())
		return nil
	}

	if d := m.registry.ComputeSnapshotDiff(snap); d != nil {
		m.registry.ApplyDiff(d)
		m.observer.DiffApplied(m.registry.Markets(), d)
	}
	return nil
}

// HandleFrame routes decoded push frames. Ticker updates flow through the
// diff engine's merge path; everything else is informational.
func (m *Mirror) HandleFrame(f push.Frame) {
	switch f := f.(type) {
	case push.TickerFrame:
		if d := m.registry.ComputeTickerDiff(f.Updates); d != nil {
			m.registry.ApplyDiff(d)
			m.observer.DiffApplied(m.registry.Markets(), d)
		}

	case push.HeartbeatFrame:
		m.logger.Debug("heartbeat")

	case push.AckFrame:
		m.logger.Debug("subscription ack",
			"channel", f.Channel,
			"subscribed", f.Subscribed,
		)

	case push.BookFrame:
		// Depth merging is out of scope; the per-market channel is only
		// acknowledged here.
		m.logger.Debug("book frame", "channel", f.Channel, "seq", f.Seq)

	case push.VolumeFrame:
		m.logger.Debug("volume frame", "seq", f.Seq)

	case push.AccountFrame:
		m.logger.Debug("account frame")

	case push.UnknownFrame:
		m.logger.Debug("unknown frame", "channel", f.Channel)
	}
}

// benign reports whether an error is a silent no-op at the cycle boundary.
func benign(err error) bool {
	return errors.Is(err, api.ErrRequestIgnored) || errors.Is(err, api.ErrCancelled)
}

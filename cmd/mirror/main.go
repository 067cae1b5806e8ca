package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmarsh/market-mirror/internal/api"
	"github.com/dmarsh/market-mirror/internal/config"
	"github.com/dmarsh/market-mirror/internal/mirror"
	"github.com/dmarsh/market-mirror/internal/model"
	"github.com/dmarsh/market-mirror/internal/push"
	"github.com/dmarsh/market-mirror/internal/registry"
	"github.com/dmarsh/market-mirror/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional, defaults apply)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(*logLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("starting mirror",
		"version", version.String(),
		"config", *configPath,
	)

	// Load configuration
	var cfg *config.MirrorConfig
	var err error
	if *configPath != "" {
		cfg, err = config.LoadAndValidate(*configPath)
	} else {
		cfg = config.Default()
		err = cfg.Validate()
	}
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"ticker_url", cfg.API.TickerURL,
		"push_url", cfg.Push.URL,
		"poll_interval", cfg.Poll.Interval,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Create the request client and its two endpoints
	apiClient := api.NewClient(
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
	)
	fetcher := mirror.NewAPIFetcher(apiClient, cfg.API.TickerURL, cfg.API.BooksURL)

	// Create the registry and coordinator. The push connection dispatches
	// into the coordinator, which does not exist until after the connection
	// is constructed; frames only flow once the coordinator sends the first
	// subscribe, so the indirection is settled by then.
	reg := registry.New(logger)

	var m *mirror.Mirror
	conn := push.NewConn(push.Config{
		URL:              cfg.Push.URL,
		IdleClose:        cfg.Push.IdleClose,
		HandshakeTimeout: cfg.Push.HandshakeTimeout,
		WriteTimeout:     cfg.Push.WriteTimeout,
	}, push.FrameHandlerFunc(func(f push.Frame) { m.HandleFrame(f) }), logger)

	m = mirror.New(mirror.Config{
		PollInterval: cfg.Poll.Interval,
		BookDepth:    cfg.Poll.BookDepth,
	}, fetcher, conn, reg, &logObserver{logger: logger}, logger)

	g, gctx := errgroup.WithContext(ctx)

	// Health server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(reg, conn, m),
	}
	g.Go(func() error {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return healthServer.Shutdown(shutdownCtx)
	})

	// Start both data paths: the poll loop and the push subscription.
	m.StartPolling()
	if err := m.SubscribeTicker(); err != nil {
		logger.Warn("ticker subscription failed", "error", err)
	}

	logger.Info("mirror running",
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Health.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")
	m.Stop()

	if err := g.Wait(); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("mirror stopped")
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(reg *registry.Registry, conn *push.Conn, m *mirror.Mirror) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		health.Components["registry"] = map[string]any{
			"primed":  reg.Primed(),
			"markets": reg.Len(),
		}
		if !reg.Primed() {
			health.Status = "degraded"
		}

		health.Components["push"] = map[string]any{
			"state":  conn.State().String(),
			"queued": conn.QueueLen(),
		}
		health.Components["polling"] = m.Polling()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/markets", func(w http.ResponseWriter, r *http.Request) {
		markets := reg.Markets()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"count":   len(markets),
			"markets": markets,
		})
	})

	return mux
}

// logObserver is the display stand-in: it logs every registry event the way
// a renderer would consume it, including the price direction for changes.
type logObserver struct {
	logger *slog.Logger
}

func (o *logObserver) RegistryReset(markets map[int64]model.Market) {
	o.logger.Info("registry populated", "markets", len(markets))
}

func (o *logObserver) DiffApplied(markets map[int64]model.Market, d *model.Diff) {
	for id, mc := range d.Changes {
		if mc.Last != nil {
			o.logger.Info("price changed",
				"id", id,
				"label", markets[id].Label,
				"old", mc.Last.Old,
				"new", mc.Last.New,
				"direction", model.PriceDirection(mc.Last.Old, mc.Last.New),
			)
		}
		if mc.Active != nil {
			o.logger.Info("market activity changed",
				"id", id,
				"label", markets[id].Label,
				"active", mc.Active.New,
			)
		}
	}
	for id, mkt := range d.Additions {
		o.logger.Info("market added", "id", id, "label", mkt.Label, "last", mkt.Last)
	}
	for id, mkt := range d.Removals {
		o.logger.Info("market removed", "id", id, "label", mkt.Label)
	}
}

func (o *logObserver) BooksReceived(pair string, book model.OrderBook) {
	o.logger.Info("order book",
		"pair", pair,
		"asks", len(book.Asks),
		"bids", len(book.Bids),
		"seq", book.Seq,
	)
}

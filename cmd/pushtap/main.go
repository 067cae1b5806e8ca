// pushtap connects to the push endpoint and streams decoded frames to the
// console. Useful for eyeballing the wire protocol without running the full
// mirror.
//
// Usage: go run ./cmd/pushtap --url wss://api2.poloniex.com
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/dmarsh/market-mirror/internal/config"
	"github.com/dmarsh/market-mirror/internal/push"
)

func main() {
	url := flag.String("url", config.DefaultPushURL, "push endpoint URL")
	channels := flag.String("channels", "1002", "comma-separated channel ids to subscribe")
	verbose := flag.Bool("verbose", false, "print full frame JSON")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	cfg := push.DefaultConfig()
	cfg.URL = *url
	cfg.IdleClose = 0 // a tap never hangs up on its own

	conn := push.NewConn(cfg, push.FrameHandlerFunc(func(f push.Frame) {
		printFrame(f, *verbose)
	}), logger)

	for _, field := range strings.Split(*channels, ",") {
		ch, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			logger.Error("bad channel id", "value", field, "error", err)
			os.Exit(1)
		}
		if err := conn.Send(push.Subscribe(ch)); err != nil {
			logger.Error("subscribe failed", "channel", ch, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("streaming started - press Ctrl+C to stop", "url", *url)

	// Wait for shutdown
	<-ctx.Done()
	conn.Close()

	logger.Info("shutdown complete")
}

func printFrame(f push.Frame, verbose bool) {
	if verbose {
		data, _ := json.MarshalIndent(f, "", "  ")
		fmt.Printf("[%T] %s\n", f, data)
		return
	}

	switch f := f.(type) {
	case push.HeartbeatFrame:
		fmt.Println("[HEARTBEAT]")
	case push.AckFrame:
		fmt.Printf("[ACK] channel=%d subscribed=%v\n", f.Channel, f.Subscribed)
	case push.TickerFrame:
		for _, u := range f.Updates {
			fmt.Printf("[TICKER] id=%d last=%s frozen=%v seq=%d\n", u.ID, u.Last, u.Frozen, f.Seq)
		}
	case push.VolumeFrame:
		fmt.Printf("[VOLUME] seq=%d\n", f.Seq)
	case push.AccountFrame:
		fmt.Println("[ACCOUNT]")
	case push.BookFrame:
		fmt.Printf("[BOOK] channel=%d seq=%d bytes=%d\n", f.Channel, f.Seq, len(f.Payload))
	case push.UnknownFrame:
		fmt.Printf("[UNKNOWN] channel=%d\n", f.Channel)
	}
}

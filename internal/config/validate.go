package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *MirrorConfig) Validate() error {
	if c.API.TickerURL == "" {
		return errors.New("api.ticker_url is required")
	}
	if c.API.BooksURL == "" {
		return errors.New("api.books_url is required")
	}
	if !strings.Contains(c.API.BooksURL, "{pair}") {
		return errors.New("api.books_url must contain a {pair} placeholder")
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout must be >= 0")
	}

	if c.Push.URL == "" {
		return errors.New("push.url is required")
	}
	if !strings.HasPrefix(c.Push.URL, "ws://") && !strings.HasPrefix(c.Push.URL, "wss://") {
		return fmt.Errorf("push.url must be a ws:// or wss:// URL, got %q", c.Push.URL)
	}
	if c.Poll.Interval <= 0 {
		return errors.New("poll.interval must be > 0")
	}
	if c.Poll.BookDepth < 1 {
		return errors.New("poll.book_depth must be >= 1")
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}

	return nil
}

package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultTickerURL  = "https://poloniex.com/public?command=returnTicker"
	DefaultBooksURL   = "https://poloniex.com/public?command=returnOrderBook&currencyPair={pair}&depth={depth}"
	DefaultAPITimeout = 30 * time.Second

	DefaultPushURL          = "wss://api2.poloniex.com"
	DefaultIdleClose        = 60 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 5 * time.Second

	DefaultPollInterval = 10 * time.Second
	DefaultBookDepth    = 50

	DefaultHealthPort = 8090
)

func (c *MirrorConfig) applyDefaults() {
	// API defaults
	if c.API.TickerURL == "" {
		c.API.TickerURL = DefaultTickerURL
	}
	if c.API.BooksURL == "" {
		c.API.BooksURL = DefaultBooksURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	// Push defaults
	if c.Push.URL == "" {
		c.Push.URL = DefaultPushURL
	}
	if c.Push.IdleClose == 0 {
		c.Push.IdleClose = DefaultIdleClose
	} else if c.Push.IdleClose < 0 {
		// Negative disables the idle timer.
		c.Push.IdleClose = 0
	}
	if c.Push.HandshakeTimeout == 0 {
		c.Push.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Push.WriteTimeout == 0 {
		c.Push.WriteTimeout = DefaultWriteTimeout
	}

	// Poll defaults
	if c.Poll.Interval == 0 {
		c.Poll.Interval = DefaultPollInterval
	}
	if c.Poll.BookDepth == 0 {
		c.Poll.BookDepth = DefaultBookDepth
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
}

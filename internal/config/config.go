package config

import "time"

// MirrorConfig is the root configuration for a mirror instance.
type MirrorConfig struct {
	API    APIConfig    `yaml:"api"`
	Push   PushConfig   `yaml:"push"`
	Poll   PollConfig   `yaml:"poll"`
	Health HealthConfig `yaml:"health"`
}

// APIConfig holds the public REST endpoint settings.
type APIConfig struct {
	TickerURL string        `yaml:"ticker_url"` // Full-snapshot ticker endpoint
	BooksURL  string        `yaml:"books_url"`  // Order-book endpoint; must contain {pair} and {depth}
	Timeout   time.Duration `yaml:"timeout"`
}

// PushConfig holds the push (WebSocket) endpoint settings.
type PushConfig struct {
	URL              string        `yaml:"url"`
	IdleClose        time.Duration `yaml:"idle_close"` // Negative disables auto-close
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
}

// PollConfig holds snapshot poll loop settings.
type PollConfig struct {
	Interval  time.Duration `yaml:"interval"`
	BookDepth int           `yaml:"book_depth"`
}

// HealthConfig holds the local health endpoint settings.
type HealthConfig struct {
	Port int `yaml:"port"`
}

// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; Load layers an optional YAML file and env vars.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address for the query surface.
	Addr string `koanf:"addr"`

	// MaxEntries bounds the in-memory history store. Oldest entries are
	// evicted first once the bound is reached.
	MaxEntries int `koanf:"max_entries"`

	// SourceURL is the page scanned for the streaming endpoint.
	SourceURL string `koanf:"source_url"`

	// RedisURL is the persistence backend connection string,
	// e.g. redis://localhost:6379/0.
	RedisURL string `koanf:"redis_url"`

	// RetryIntervalMS is the resolver's delay between failed attempts.
	RetryIntervalMS int `koanf:"retry_interval_ms"`

	// QueueSize bounds the in-memory tick sample queue.
	QueueSize int `koanf:"queue_size"`

	// InsecureStreamTLS skips certificate verification when dialing the
	// stream endpoint. Only for development feeds with self-signed certs.
	InsecureStreamTLS bool `koanf:"insecure_stream_tls"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":8001",
		MaxEntries:      1000,
		SourceURL:       "http://www.reddit.com/r/thebutton",
		RedisURL:        "redis://localhost:6379/0",
		RetryIntervalMS: 5000,
		QueueSize:       1024,
	}
}

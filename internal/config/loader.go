package config

import (
	"context"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if CLICKHISTORY_CONFIG is set
//  3. env (prefix CLICKHISTORY_)
//
// The bare PORT env var is also honored for parity with the original
// deployment environment, unless CLICKHISTORY_ADDR overrides it.
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("CLICKHISTORY_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, wrap(ErrLoadConfig, err)
		}
	}

	// Environment variables: CLICKHISTORY_ADDR, CLICKHISTORY_MAX_ENTRIES, ...
	// Keys map to the koanf tags on the struct with underscores preserved.
	envProvider := env.Provider("CLICKHISTORY_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "clickhistory_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, wrap(ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, wrap(ErrLoadConfig, err)
	}

	if port := os.Getenv("PORT"); port != "" && os.Getenv("CLICKHISTORY_ADDR") == "" && !k.Exists("addr") {
		cfg.Addr = ":" + port
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return wrapMsg(ErrInvalidConfig, "addr must not be empty")
	case c.MaxEntries < 1:
		return wrapMsg(ErrInvalidConfig, "max_entries must be positive")
	case c.SourceURL == "":
		return wrapMsg(ErrInvalidConfig, "source_url must not be empty")
	case c.RedisURL == "":
		return wrapMsg(ErrInvalidConfig, "redis_url must not be empty")
	case c.RetryIntervalMS < 1:
		return wrapMsg(ErrInvalidConfig, "retry_interval_ms must be positive")
	case c.QueueSize < 1:
		return wrapMsg(ErrInvalidConfig, "queue_size must be positive")
	}
	return nil
}

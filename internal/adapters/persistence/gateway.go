// Package persistence stores the press history snapshot in a single Redis
// key.
//
// The durable copy is eventually consistent with the in-memory store:
// writes happen after every mutation and are last-write-wins on the key,
// which is safe because each write carries the full snapshot.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/treyp/clickhistory/internal/domain/model"
	"github.com/treyp/clickhistory/pkg/logger"
	"github.com/treyp/clickhistory/pkg/metrics"
)

// DefaultKey is the fixed key holding the serialized history.
const DefaultKey = "clickhistory:entries"

// DefaultWatchInterval is how often the connection watcher pings the
// backend.
const DefaultWatchInterval = 15 * time.Second

// Gateway reads and writes the snapshot row.
type Gateway struct {
	client        *goredis.Client
	key           string
	watchInterval time.Duration
	logger        logger.Logger
}

// Option applies a configuration option to the Gateway.
type Option func(*Gateway)

// WithKey overrides the snapshot key.
func WithKey(key string) Option {
	return func(g *Gateway) {
		if key != "" {
			g.key = key
		}
	}
}

// WithWatchInterval sets the connection watcher's ping interval.
func WithWatchInterval(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.watchInterval = d
		}
	}
}

// WithLogger sets a custom logger for the gateway.
func WithLogger(l logger.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a gateway from a Redis connection URL,
// e.g. redis://[:password@]host:port[/db].
func New(url string, opts ...Option) (*Gateway, error) {
	redisOpts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, wrapConfig(err)
	}

	g := &Gateway{
		client:        goredis.NewClient(redisOpts),
		key:           DefaultKey,
		watchInterval: DefaultWatchInterval,
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = logger.Get().Named("persistence")
	}

	return g, nil
}

// Load fetches and deserializes the snapshot row. A missing row is not an
// error: an empty placeholder is written and an empty history returned, so
// the process starts with zero history instead of failing.
func (g *Gateway) Load(ctx context.Context) ([]model.Event, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPersistLoadDuration(time.Since(start).Seconds())
	}()

	payload, err := g.client.Get(ctx, g.key).Result()
	if errors.Is(err, goredis.Nil) {
		g.logger.Info(ctx, "no persisted history; starting empty", logger.String("key", g.key))
		// Best-effort placeholder; NX so a concurrent writer wins.
		if err := g.client.SetNX(ctx, g.key, "[]", 0).Err(); err != nil {
			g.logger.Warn(ctx, "failed to write placeholder row", logger.Error(err))
		}
		return []model.Event{}, nil
	}
	if err != nil {
		return nil, wrapLoad(err)
	}

	var events []model.Event
	if err := json.Unmarshal([]byte(payload), &events); err != nil {
		return nil, wrapLoad(err)
	}

	g.logger.Info(ctx, "loaded persisted history",
		logger.String("key", g.key),
		logger.Int("entries", len(events)),
	)
	return events, nil
}

// Save serializes events and overwrites the snapshot row.
func (g *Gateway) Save(ctx context.Context, events []model.Event) error {
	start := time.Now()

	if events == nil {
		events = []model.Event{}
	}
	payload, err := json.Marshal(events)
	if err != nil {
		metrics.RecordPersistSaveFailure()
		return wrapSave(err)
	}

	if err := g.client.Set(ctx, g.key, payload, 0).Err(); err != nil {
		metrics.RecordPersistSaveFailure()
		return wrapSave(err)
	}

	metrics.RecordPersistSave()
	metrics.RecordPersistSaveDuration(time.Since(start).Seconds())
	return nil
}

// Watch pings the backend on an interval and logs connectivity changes
// until ctx is canceled. Disconnects are logged, never fatal.
func (g *Gateway) Watch(ctx context.Context) {
	ticker := time.NewTicker(g.watchInterval)
	defer ticker.Stop()

	connected := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := g.client.Ping(ctx).Err()
			switch {
			case err != nil && connected:
				connected = false
				g.logger.Warn(ctx, "lost connection to persistence backend", logger.Error(err))
			case err == nil && !connected:
				connected = true
				g.logger.Info(ctx, "persistence backend connection restored")
			}
		}
	}
}

// Close releases the underlying client.
func (g *Gateway) Close() error {
	return g.client.Close()
}

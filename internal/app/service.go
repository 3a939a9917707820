// Package service wires the ingestion pipeline: endpoint resolution, the
// stream session, the delta worker, the bounded history store, and the
// persistence gateway.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	eventqueue "github.com/treyp/clickhistory/internal/adapters/mq/queue"
	pipeline "github.com/treyp/clickhistory/internal/adapters/mq/worker"
	"github.com/treyp/clickhistory/internal/adapters/persistence"
	repository "github.com/treyp/clickhistory/internal/adapters/repository"
	"github.com/treyp/clickhistory/internal/adapters/resolver"
	"github.com/treyp/clickhistory/internal/adapters/stream"
	"github.com/treyp/clickhistory/internal/domain/delta"
	"github.com/treyp/clickhistory/internal/domain/model"
	"github.com/treyp/clickhistory/pkg/logger"
)

// Timeouts for persistence interactions.
const (
	loadTimeout      = 10 * time.Second
	saveTimeout      = 10 * time.Second
	finalSaveTimeout = 5 * time.Second
	workerStopGrace  = 5 * time.Second
)

// Service implements the API dependencies for the press history system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    *repository.HistoryStore
	gateway  *persistence.Gateway
	queue    *eventqueue.InMemoryQueue
	worker   *pipeline.Worker
	resolver *resolver.Resolver
	session  *stream.Session

	// Configuration
	maxEntries    int
	queueSize     int
	sourceURL     string
	redisURL      string
	retryInterval time.Duration
	dialer        *websocket.Dialer

	// State
	started      bool
	cancel       context.CancelFunc
	pipelineDone chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithMaxEntries bounds the history store.
func WithMaxEntries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithQueueSize bounds the ingest queue.
func WithQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithSourceURL sets the page scanned for the stream endpoint.
func WithSourceURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.sourceURL = url
		}
	}
}

// WithRedisURL sets the persistence backend connection string.
func WithRedisURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.redisURL = url
		}
	}
}

// WithRetryInterval sets the resolver's delay between failed attempts.
func WithRetryInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.retryInterval = d
		}
	}
}

// WithStreamDialer overrides the websocket dialer used for stream
// sessions.
func WithStreamDialer(d *websocket.Dialer) Option {
	return func(s *Service) {
		if d != nil {
			s.dialer = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		maxEntries:    1000,
		queueSize:     1024,
		sourceURL:     resolver.DefaultSourceURL,
		redisURL:      "redis://localhost:6379/0",
		retryInterval: resolver.DefaultRetryInterval,
		pipelineDone:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes components, seeds the store from the persisted
// snapshot, and launches the ingestion pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	gateway, err := persistence.New(s.redisURL)
	if err != nil {
		return fmt.Errorf("persistence gateway: %w", err)
	}
	s.gateway = gateway

	s.store = repository.NewHistoryStore(
		repository.WithCapacity(s.maxEntries),
		repository.WithAfterAppend(s.persistAsync),
	)

	// Seed from the persisted snapshot. A failed load is non-fatal: the
	// process runs with zero history rather than refusing to start.
	loadCtx, cancelLoad := context.WithTimeout(ctx, loadTimeout)
	events, err := gateway.Load(loadCtx)
	cancelLoad()
	if err != nil {
		s.logger.Warn(ctx, "history load failed; starting empty", logger.Error(err))
	} else {
		s.store.Seed(ctx, events)
	}

	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.worker = pipeline.New(s.queue, delta.NewEngine(), s.store)
	s.resolver = resolver.New(
		resolver.WithSourceURL(s.sourceURL),
		resolver.WithRetryInterval(s.retryInterval),
	)
	sessionOpts := []stream.Option{}
	if s.dialer != nil {
		sessionOpts = append(sessionOpts, stream.WithDialer(s.dialer))
	}
	s.session = stream.NewSession(s.queue, sessionOpts...)

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.worker.Run(runCtx)
	go s.runPipeline(runCtx)
	go s.gateway.Watch(runCtx)

	s.started = true
	s.logger.Info(ctx, "press history service started",
		logger.Int("maxEntries", s.maxEntries),
		logger.Int("queueSize", s.queueSize),
		logger.String("source", s.sourceURL),
	)

	return nil
}

// runPipeline alternates between endpoint resolution and stream sessions
// until ctx is canceled. Each session gets a fresh generation so the delta
// worker resets its state and discards late arrivals from prior sessions.
func (s *Service) runPipeline(ctx context.Context) {
	defer close(s.pipelineDone)

	var gen uint64
	for ctx.Err() == nil {
		endpoint, err := s.resolver.Resolve(ctx)
		if err != nil {
			return
		}

		gen++
		if err := s.session.Open(ctx, endpoint, gen); err != nil {
			s.logger.Warn(ctx, "stream closed; searching for a new endpoint", logger.Error(err))
			continue
		}
		// A nil error means a context-driven close.
	}
}

// persistAsync is the store's after-append hook: a best-effort background
// save of the new snapshot. Failures are logged; the in-memory state stays
// authoritative.
func (s *Service) persistAsync(snapshot []model.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := s.gateway.Save(ctx, snapshot); err != nil {
			s.logger.Error(ctx, "history save failed", logger.Error(err))
		}
	}()
}

// Stop shuts the pipeline down and performs the mandatory final save. The
// save is synchronous but bounded, so a broken backend cannot hang exit.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping press history service...")

	s.cancel()

	select {
	case <-s.pipelineDone:
	case <-time.After(workerStopGrace):
		s.logger.Warn(ctx, "pipeline did not stop in time")
	}

	_ = s.queue.Close()

	stopCtx, cancelStop := context.WithTimeout(ctx, workerStopGrace)
	if err := s.worker.Shutdown(stopCtx); err != nil {
		s.logger.Warn(ctx, "worker shutdown incomplete", logger.Error(err))
	}
	cancelStop()

	saveCtx, cancelSave := context.WithTimeout(ctx, finalSaveTimeout)
	if err := s.gateway.Save(saveCtx, s.store.Snapshot(saveCtx)); err != nil {
		s.logger.Error(ctx, "final history save failed", logger.Error(err))
	} else {
		s.logger.Info(ctx, "final history save complete",
			logger.Int("entries", s.store.Len(saveCtx)),
		)
	}
	cancelSave()

	if err := s.gateway.Close(); err != nil {
		s.logger.Warn(ctx, "persistence close failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "press history service stopped")
}

// History returns the full ordered press history.
func (s *Service) History(ctx context.Context) []model.Event {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()

	if store == nil {
		return []model.Event{}
	}
	return store.Snapshot(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":    s.started,
		"maxEntries": s.maxEntries,
		"queueSize":  s.queueSize,
	}

	if s.store != nil {
		stats["entries"] = s.store.Len(ctx)
	}
	if s.queue != nil {
		stats["queueLength"] = s.queue.Len(ctx)
	}

	return stats
}

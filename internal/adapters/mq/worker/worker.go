// Package worker runs the single pipeline consumer that turns tick samples
// into stored press events.
//
// Exactly one worker drains the queue. That keeps all delta-engine and
// store mutation on one sequential timeline, so arrival order is preserved
// and no further locking is needed around the engine.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/treyp/clickhistory/internal/adapters/mq/queue"
	"github.com/treyp/clickhistory/internal/domain/delta"
	"github.com/treyp/clickhistory/internal/domain/model"
	"github.com/treyp/clickhistory/pkg/logger"
	"github.com/treyp/clickhistory/pkg/metrics"
)

// Appender is the store surface the worker writes to.
type Appender interface {
	Append(ctx context.Context, e model.Event)
}

// Queue defines how the worker receives samples.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Sample
}

// Worker consumes tick samples, applies the delta engine, and appends the
// resulting press events to the store.
type Worker struct {
	queue  Queue
	engine *delta.Engine
	store  Appender
	name   string

	// session is the generation of the stream session whose samples are
	// currently accepted. Samples from older generations are discarded;
	// a newer generation resets the engine before processing.
	session uint64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// New creates a worker with configuration options.
func New(q Queue, engine *delta.Engine, store Appender, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		engine:   engine,
		store:    store,
		name:     "pipeline",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the worker loop until ctx is canceled, the queue closes, or
// Shutdown is called.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	samples := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case sample, ok := <-samples:
			if !ok {
				return
			}
			w.processSample(ctx, sample)
		}
	}
}

// Shutdown stops the worker and waits for the loop to exit.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "worker shutdown timed out")
		return fmt.Errorf("worker shutdown timed out: %w", ctx.Err())
	}
}

// processSample feeds one sample through the delta engine.
func (w *Worker) processSample(ctx context.Context, sample queue.Sample) {
	// A sample from a superseded session arriving late must not touch the
	// engine; a sample from a newer session starts it over.
	if sample.Session < w.session {
		metrics.RecordSampleDropped("stale_session")
		return
	}
	if sample.Session > w.session {
		w.engine.Reset()
		w.session = sample.Session
	}

	metrics.RecordTickSample()

	evt, emitted, err := w.engine.OnSample(sample)
	if err != nil {
		if errors.Is(err, delta.ErrMalformedCount) {
			metrics.RecordSampleDropped("malformed")
			w.logger.Warn(ctx, "dropping sample with malformed counter",
				logger.String("participants", sample.ParticipantsText),
				logger.Error(err),
			)
			return
		}
		metrics.RecordSampleDropped("error")
		w.logger.Error(ctx, "delta engine rejected sample", logger.Error(err))
		return
	}
	if !emitted {
		return
	}

	w.store.Append(ctx, evt)
	metrics.RecordPress(evt.Clicks)
	w.logger.Debug(ctx, "press recorded",
		logger.Int("clicks", evt.Clicks),
		logger.Float64("seconds", evt.Seconds),
		logger.String("color", evt.Color),
	)
}

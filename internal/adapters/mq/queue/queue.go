// Package queue defines the contract for handing tick samples from the
// stream session to the pipeline worker.
//
// The stream session enqueues without blocking; the single worker drains
// via a channel, which preserves arrival order.
package queue

import (
	"context"
	"sync"

	"github.com/treyp/clickhistory/internal/domain/model"
	"github.com/treyp/clickhistory/pkg/metrics"
)

// defaultCapacity bounds the in-memory queue when no option is given.
const defaultCapacity = 1024

// Sample is the payload type flowing through the queue.
type Sample = model.TickSample

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a sample to the queue.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, s Sample) bool

	// Dequeue returns the channel samples arrive on. The channel is closed
	// when the queue is closed.
	Dequeue(ctx context.Context) <-chan Sample

	// Len returns the current number of queued samples.
	Len(ctx context.Context) int

	// Close shuts down the queue. After closing, no new samples can be
	// enqueued and the dequeue channel is closed.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	samples  chan Sample
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.samples = make(chan Sample, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a sample to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, s Sample) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueDrop()
		return false
	}

	select {
	case q.samples <- s:
		metrics.UpdateQueueSize(len(q.samples))
		return true
	case <-ctx.Done():
		metrics.RecordQueueDrop()
		return false
	default:
		metrics.RecordQueueDrop()
		return false
	}
}

// Dequeue returns the channel samples arrive on.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Sample {
	return q.samples
}

// Len returns the current number of queued samples.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return len(q.samples)
}

// Close shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.samples)
	q.closed = true
	return nil
}

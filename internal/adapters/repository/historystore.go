package repository

import (
	"context"
	"sync"

	"github.com/treyp/clickhistory/internal/domain/model"
	"github.com/treyp/clickhistory/pkg/metrics"
)

// defaultCapacity bounds the history when no option is given.
const defaultCapacity = 1000

// AfterAppendFunc is invoked after every successful append with a snapshot
// of the new contents. Hooks run on the appending goroutine and must not
// block; the persistence write-through hook launches its own goroutine.
type AfterAppendFunc func(snapshot []model.Event)

// HistoryStore is a slice-backed, capacity-bounded Store. Insertion order
// is chronological order; eviction is FIFO from the front, keeping the most
// recently appended entries.
type HistoryStore struct {
	mu          sync.RWMutex
	capacity    int
	entries     []model.Event
	afterAppend AfterAppendFunc
}

// NewHistoryStore creates a history store with configuration options.
func NewHistoryStore(opts ...Option) *HistoryStore {
	s := &HistoryStore{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	s.entries = make([]model.Event, 0, s.capacity)

	metrics.UpdateStoreCapacity(s.capacity)
	metrics.UpdateStoreSize(0)

	return s
}

// Append adds e to the end of the history and truncates from the front if
// the capacity bound is exceeded.
func (s *HistoryStore) Append(ctx context.Context, e model.Event) {
	s.mu.Lock()
	s.entries = append(s.entries, e)
	if evicted := len(s.entries) - s.capacity; evicted > 0 {
		s.entries = append(s.entries[:0:0], s.entries[evicted:]...)
		metrics.RecordStoreEvictions(evicted)
	}
	snap := append([]model.Event(nil), s.entries...)
	s.mu.Unlock()

	metrics.UpdateStoreSize(len(snap))

	if s.afterAppend != nil {
		s.afterAppend(snap)
	}
}

// Snapshot returns a copy of the current contents in insertion order.
func (s *HistoryStore) Snapshot(ctx context.Context) []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Event(nil), s.entries...)
}

// Len returns the current number of stored events.
func (s *HistoryStore) Len(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Seed replaces the contents with a persisted snapshot, keeping at most the
// most recent capacity entries. Called once at boot, before the pipeline
// starts; the after-append hook does not fire.
func (s *HistoryStore) Seed(ctx context.Context, events []model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if over := len(events) - s.capacity; over > 0 {
		events = events[over:]
	}
	s.entries = append(s.entries[:0:0], events...)
	metrics.UpdateStoreSize(len(s.entries))
}

package repository

// Option applies a configuration option to the HistoryStore.
type Option func(*HistoryStore)

// WithCapacity sets the maximum number of retained events.
func WithCapacity(capacity int) Option {
	return func(s *HistoryStore) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// WithAfterAppend registers a hook invoked after every successful append.
func WithAfterAppend(fn AfterAppendFunc) Option {
	return func(s *HistoryStore) {
		s.afterAppend = fn
	}
}

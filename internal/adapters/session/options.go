package session

import "time"

// Option applies a configuration option to the memory store.
type Option func(*memoryStore)

// WithMaxSize sets how many sessions are kept before the least recently used
// one is evicted. maxSize <= 0 means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(s *memoryStore) {
		s.maxSize = maxSize
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *memoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the session id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *memoryStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}

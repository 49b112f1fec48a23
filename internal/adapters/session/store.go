package session

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/bankdash/pkg/metrics"
)

// Store holds sessions by id.
type Store interface {
	// GetOrCreate returns the session for id, or a new session with a fresh
	// id when id is unknown. created reports which happened.
	GetOrCreate(ctx context.Context, id string) (s *Session, created bool)

	// Get returns the session for id without creating one.
	Get(ctx context.Context, id string) (*Session, bool)

	// Delete forgets the session.
	Delete(ctx context.Context, id string)

	Size() int64
}

// memoryStore is a bounded LRU of sessions. When full, the least recently
// used session is evicted.
type memoryStore struct {
	mu      sync.Mutex
	byID    map[string]*list.Element
	order   *list.List // front = most recently used
	maxSize int
	size    atomic.Int64
	now     func() time.Time
	newID   func() string
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(opts ...Option) Store {
	s := &memoryStore{
		maxSize: 10000,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.byID = make(map[string]*list.Element)
	s.order = list.New()
	return s
}

func (s *memoryStore) GetOrCreate(_ context.Context, id string) (*Session, bool) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.byID[id]; ok && id != "" {
		s.order.MoveToFront(el)
		sess := el.Value.(*Session)
		sess.touch(now)
		return sess, false
	}

	if s.maxSize > 0 {
		for len(s.byID) >= s.maxSize {
			s.evictOldest()
		}
	}
	sess := newSession(s.newID(), now)
	s.byID[sess.ID] = s.order.PushFront(sess)
	s.size.Add(1)
	metrics.UpdateActiveSessions(len(s.byID))
	return sess, true
}

func (s *memoryStore) Get(_ context.Context, id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	s.order.MoveToFront(el)
	return el.Value.(*Session), true
}

func (s *memoryStore) Delete(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.byID[id]; ok {
		s.order.Remove(el)
		delete(s.byID, id)
		s.size.Add(-1)
		metrics.UpdateActiveSessions(len(s.byID))
	}
}

// evictOldest drops the least recently used session. Caller holds s.mu.
func (s *memoryStore) evictOldest() {
	el := s.order.Back()
	if el == nil {
		return
	}
	s.order.Remove(el)
	delete(s.byID, el.Value.(*Session).ID)
	s.size.Add(-1)
}

func (s *memoryStore) Size() int64 {
	return s.size.Load()
}

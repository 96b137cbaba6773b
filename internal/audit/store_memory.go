package audit

import (
	"context"
	"sync"
)

const defaultCapacity = 1000

// InMemoryStore is a bounded ring of the most recent events. When full, the
// oldest event is overwritten.
type InMemoryStore struct {
	mu       sync.RWMutex
	events   []Event
	head     int
	count    int
	capacity int
}

func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &InMemoryStore{events: make([]Event, capacity), capacity: capacity}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[s.head] = event
	s.head = (s.head + 1) % s.capacity
	if s.count < s.capacity {
		s.count++
	}
	return nil
}

// ListRecent returns up to limit events, newest first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > s.count {
		limit = s.count
	}
	out := make([]Event, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.head - i + s.capacity) % s.capacity
		out = append(out, s.events[idx])
	}
	return out, nil
}

package store

import (
	"context"
	"sync"

	"sangham/internal/admin/models"
	"sangham/pkg/platform/sentinel"
)

// InMemory holds admin sessions in process memory. Sessions are lost on
// restart and not shared across replicas; use RedisStore for either.
type InMemory struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewInMemory() *InMemory {
	return &InMemory{sessions: make(map[string]models.Session)}
}

func (s *InMemory) Save(_ context.Context, token string, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = *session
	return nil
}

func (s *InMemory) Find(_ context.Context, token string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &session, nil
}

// Delete removes the token. Deleting an unknown token is not an error.
func (s *InMemory) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

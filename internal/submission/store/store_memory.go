package store

import (
	"context"
	"sync"
	"time"

	"sangham/internal/submission/models"
	"sangham/pkg/platform/sentinel"
)

// InMemory keeps submissions in a map. It backs tests and single-node
// deployments without DATABASE_URL.
type InMemory struct {
	mu     sync.RWMutex
	rows   map[int64]*models.Submission
	nextID int64
}

func NewInMemory() *InMemory {
	return &InMemory{rows: make(map[int64]*models.Submission)}
}

func (s *InMemory) Create(_ context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	sub.ID = s.nextID
	s.rows[sub.ID] = clone(sub)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id int64) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(row), nil
}

func (s *InMemory) List(_ context.Context, status *models.Status) ([]*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Submission, 0, len(s.rows))
	for _, row := range s.rows {
		if status != nil && row.Status != *status {
			continue
		}
		out = append(out, clone(row))
	}
	models.SortForDisplay(out)
	return out, nil
}

func (s *InMemory) Approve(_ context.Context, id int64, approvedAt time.Time) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !row.IsPending() {
		return nil, sentinel.ErrInvalidState
	}
	row.Status = models.StatusApproved
	row.ApprovedAt = &approvedAt
	return clone(row), nil
}

func (s *InMemory) DeletePending(_ context.Context, id int64) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !row.IsPending() {
		return nil, sentinel.ErrInvalidState
	}
	delete(s.rows, id)
	return clone(row), nil
}

func (s *InMemory) Ping(context.Context) error {
	return nil
}

func clone(sub *models.Submission) *models.Submission {
	c := *sub
	c.OtherGothram = cloneStr(sub.OtherGothram)
	c.HouseName = cloneStr(sub.HouseName)
	c.OtherHouseName = cloneStr(sub.OtherHouseName)
	c.Gender = cloneStr(sub.Gender)
	c.DateOfBirth = cloneStr(sub.DateOfBirth)
	c.Address = cloneStr(sub.Address)
	c.NativePlace = cloneStr(sub.NativePlace)
	if sub.ApprovedAt != nil {
		t := *sub.ApprovedAt
		c.ApprovedAt = &t
	}
	return &c
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

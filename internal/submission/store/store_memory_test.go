package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sangham/internal/submission/models"
	"sangham/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
}

func strPtr(v string) *string { return &v }

func (s *InMemoryStoreSuite) newSubmission(name, gothram string, house *string, status models.Status) *models.Submission {
	sub := &models.Submission{
		Name:        name,
		PhoneNumber: "555-0100",
		Community:   "Reddy",
		Gothram:     gothram,
		HouseName:   house,
		State:       "Texas",
		County:      "Travis",
		Status:      status,
		CreatedAt:   s.now,
	}
	if status == models.StatusApproved {
		at := s.now
		sub.ApprovedAt = &at
	}
	return sub
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	s.Run("assigns increasing ids", func() {
		a := s.newSubmission("A", "Kashyapa", nil, models.StatusPending)
		b := s.newSubmission("B", "Kashyapa", nil, models.StatusPending)
		s.Require().NoError(s.store.Create(s.ctx, a))
		s.Require().NoError(s.store.Create(s.ctx, b))
		s.Greater(b.ID, a.ID)

		found, err := s.store.FindByID(s.ctx, a.ID)
		s.Require().NoError(err)
		s.Equal("A", found.Name)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.store.FindByID(s.ctx, 9999)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned rows do not alias stored rows", func() {
		sub := s.newSubmission("Alias", "Atreya", strPtr("Original"), models.StatusPending)
		s.Require().NoError(s.store.Create(s.ctx, sub))

		found, err := s.store.FindByID(s.ctx, sub.ID)
		s.Require().NoError(err)
		*found.HouseName = "Mutated"
		found.Status = models.StatusApproved

		again, err := s.store.FindByID(s.ctx, sub.ID)
		s.Require().NoError(err)
		s.Equal("Original", *again.HouseName)
		s.Equal(models.StatusPending, again.Status)
	})
}

func (s *InMemoryStoreSuite) TestList() {
	s.Require().NoError(s.store.Create(s.ctx, s.newSubmission("Zed", "Kashyapa", nil, models.StatusApproved)))
	s.Require().NoError(s.store.Create(s.ctx, s.newSubmission("Amy", "Kashyapa", strPtr("Challa"), models.StatusPending)))
	s.Require().NoError(s.store.Create(s.ctx, s.newSubmission("Bob", "Atreya", nil, models.StatusApproved)))

	s.Run("all rows in display order", func() {
		rows, err := s.store.List(s.ctx, nil)
		s.Require().NoError(err)
		s.Require().Len(rows, 3)
		s.Equal([]string{"Bob", "Zed", "Amy"}, names(rows))
	})

	s.Run("filters by status", func() {
		approved := models.StatusApproved
		rows, err := s.store.List(s.ctx, &approved)
		s.Require().NoError(err)
		s.Equal([]string{"Bob", "Zed"}, names(rows))

		pending := models.StatusPending
		rows, err = s.store.List(s.ctx, &pending)
		s.Require().NoError(err)
		s.Equal([]string{"Amy"}, names(rows))
	})

	s.Run("empty store yields empty non-nil slice", func() {
		rows, err := NewInMemory().List(s.ctx, nil)
		s.Require().NoError(err)
		s.NotNil(rows)
		s.Empty(rows)
	})
}

func (s *InMemoryStoreSuite) TestApprove() {
	s.Run("moves pending to approved", func() {
		sub := s.newSubmission("P", "Gautama", nil, models.StatusPending)
		s.Require().NoError(s.store.Create(s.ctx, sub))

		at := s.now.Add(time.Hour)
		updated, err := s.store.Approve(s.ctx, sub.ID, at)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, updated.Status)
		s.Require().NotNil(updated.ApprovedAt)
		s.True(updated.ApprovedAt.Equal(at))
	})

	s.Run("rejects already approved row", func() {
		sub := s.newSubmission("A", "Gautama", nil, models.StatusApproved)
		s.Require().NoError(s.store.Create(s.ctx, sub))

		_, err := s.store.Approve(s.ctx, sub.ID, s.now)
		s.ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("unknown id", func() {
		_, err := s.store.Approve(s.ctx, 4242, s.now)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("concurrent approvals succeed exactly once", func() {
		sub := s.newSubmission("Race", "Harita", nil, models.StatusPending)
		s.Require().NoError(s.store.Create(s.ctx, sub))

		var wg sync.WaitGroup
		var wins atomic.Int32
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.store.Approve(s.ctx, sub.ID, s.now); err == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		s.Equal(int32(1), wins.Load())
	})
}

func (s *InMemoryStoreSuite) TestDeletePending() {
	s.Run("removes pending row and returns it", func() {
		sub := s.newSubmission("Gone", "Srivatsa", nil, models.StatusPending)
		s.Require().NoError(s.store.Create(s.ctx, sub))

		deleted, err := s.store.DeletePending(s.ctx, sub.ID)
		s.Require().NoError(err)
		s.Equal(sub.ID, deleted.ID)

		_, err = s.store.FindByID(s.ctx, sub.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("keeps approved row", func() {
		sub := s.newSubmission("Kept", "Srivatsa", nil, models.StatusApproved)
		s.Require().NoError(s.store.Create(s.ctx, sub))

		_, err := s.store.DeletePending(s.ctx, sub.ID)
		s.ErrorIs(err, sentinel.ErrInvalidState)

		_, err = s.store.FindByID(s.ctx, sub.ID)
		s.NoError(err)
	})

	s.Run("unknown id", func() {
		_, err := s.store.DeletePending(s.ctx, 777)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func names(rows []*models.Submission) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

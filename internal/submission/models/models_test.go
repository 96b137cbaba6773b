package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "sangham/pkg/domain-errors"
)

type SubmissionModelSuite struct {
	suite.Suite
	now time.Time
}

func TestSubmissionModelSuite(t *testing.T) {
	suite.Run(t, new(SubmissionModelSuite))
}

func (s *SubmissionModelSuite) SetupTest() {
	s.now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}

func strPtr(v string) *string { return &v }

func (s *SubmissionModelSuite) validRequest() *CreateSubmissionRequest {
	return &CreateSubmissionRequest{
		Name:        "Ravi Kumar",
		PhoneNumber: "9876543210",
		Community:   "Reddy",
		Gothram:     "Kashyapa",
		HouseName:   strPtr("Avula"),
		State:       "Telangana",
		County:      "Hyderabad",
	}
}

// TestInitialStatus covers approval gating at creation.
func (s *SubmissionModelSuite) TestInitialStatus() {
	s.Run("listed gothram is approved immediately", func() {
		sub := NewSubmission(s.validRequest(), s.now)
		s.Equal(StatusApproved, sub.Status)
		s.Require().NotNil(sub.ApprovedAt)
		s.Equal(s.now, *sub.ApprovedAt)
	})

	s.Run("Other gothram is pending", func() {
		req := s.validRequest()
		req.Gothram = Other
		req.OtherGothram = strPtr("Mudgala")
		sub := NewSubmission(req, s.now)
		s.Equal(StatusPending, sub.Status)
		s.Nil(sub.ApprovedAt)
	})

	s.Run("Other house name is pending", func() {
		req := s.validRequest()
		req.HouseName = strPtr(Other)
		sub := NewSubmission(req, s.now)
		s.Equal(StatusPending, sub.Status)
		s.Nil(sub.ApprovedAt)
	})

	s.Run("missing house name does not force review", func() {
		req := s.validRequest()
		req.HouseName = nil
		sub := NewSubmission(req, s.now)
		s.Equal(StatusApproved, sub.Status)
	})
}

// TestTransitions covers the review state machine guards.
func (s *SubmissionModelSuite) TestTransitions() {
	s.Run("approval sets approvedAt", func() {
		req := s.validRequest()
		req.Gothram = Other
		sub := NewSubmission(req, s.now)

		later := s.now.Add(time.Hour)
		sub.ApplyApproval(later)
		s.Equal(StatusApproved, sub.Status)
		s.Equal(later, *sub.ApprovedAt)
	})

	s.Run("approval never precedes creation", func() {
		req := s.validRequest()
		req.Gothram = Other
		sub := NewSubmission(req, s.now)

		sub.ApplyApproval(s.now.Add(-time.Minute))
		s.Equal(s.now, *sub.ApprovedAt)
	})

	s.Run("approved submissions cannot be rejected", func() {
		sub := NewSubmission(s.validRequest(), s.now)
		err := sub.CanReject()
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("pending submissions can be rejected", func() {
		req := s.validRequest()
		req.Gothram = Other
		s.NoError(NewSubmission(req, s.now).CanReject())
	})
}

// TestNormalize covers alias folding and override clearing.
func (s *SubmissionModelSuite) TestNormalize() {
	s.Run("lineage alias fills gothram", func() {
		req := &CreateSubmissionRequest{Lineage: " Other ", OtherLineage: strPtr(" X ")}
		req.Normalize()
		s.Equal(Other, req.Gothram)
		s.Require().NotNil(req.OtherGothram)
		s.Equal("X", *req.OtherGothram)
		s.Empty(req.Lineage)
		s.Nil(req.OtherLineage)
	})

	s.Run("explicit gothram wins over alias", func() {
		req := &CreateSubmissionRequest{Gothram: "Atreya", Lineage: "Harita"}
		req.Normalize()
		s.Equal("Atreya", req.Gothram)
	})

	s.Run("override fields are dropped unless parent is Other", func() {
		req := s.validRequest()
		req.OtherGothram = strPtr("ignored")
		req.OtherHouseName = strPtr("ignored")
		req.Normalize()
		s.Nil(req.OtherGothram)
		s.Nil(req.OtherHouseName)
	})

	s.Run("blank optionals become nil and gender is lowercased", func() {
		req := s.validRequest()
		req.Address = strPtr("   ")
		req.Gender = strPtr(" Female ")
		req.Normalize()
		s.Nil(req.Address)
		s.Equal("female", *req.Gender)
	})
}

// TestValidate covers every input constraint.
func (s *SubmissionModelSuite) TestValidate() {
	s.Run("valid request passes", func() {
		req := s.validRequest()
		req.Normalize()
		s.NoError(req.Validate(s.now))
	})

	s.Run("reports every violated field", func() {
		req := &CreateSubmissionRequest{Name: "A", PhoneNumber: "123", State: "T"}
		req.Normalize()
		err := req.Validate(s.now)
		s.Require().Error(err)

		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Equal(dErrors.CodeValidation, de.Code)

		var got []string
		for _, f := range de.Fields {
			got = append(got, f.Field)
		}
		s.Equal([]string{"name", "phoneNumber", "gothram", "state", "county"}, got)
	})

	s.Run("unknown gothram is rejected", func() {
		req := s.validRequest()
		req.Gothram = "Nonexistent"
		req.HouseName = nil
		s.True(dErrors.HasCode(req.Validate(s.now), dErrors.CodeValidation))
	})

	s.Run("house name must belong to gothram", func() {
		req := s.validRequest()
		req.HouseName = strPtr("Desuru")
		err := req.Validate(s.now)
		de, _ := dErrors.As(err)
		s.Require().NotNil(de)
		s.Equal("houseName", de.Fields[0].Field)
	})

	s.Run("any house name is accepted under Other gothram", func() {
		req := s.validRequest()
		req.Gothram = Other
		req.HouseName = strPtr("Anything")
		s.NoError(req.Validate(s.now))
	})

	s.Run("future date of birth is rejected", func() {
		req := s.validRequest()
		req.DateOfBirth = strPtr("2030-01-01")
		s.Error(req.Validate(s.now))
	})

	s.Run("malformed date of birth is rejected", func() {
		req := s.validRequest()
		req.DateOfBirth = strPtr("14/03/1990")
		s.Error(req.Validate(s.now))
	})

	s.Run("unknown gender is rejected", func() {
		req := s.validRequest()
		req.Gender = strPtr("unknown")
		s.Error(req.Validate(s.now))
	})
}

func (s *SubmissionModelSuite) TestLineageTable() {
	s.True(IsKnownGothram("Bharadwaja"))
	s.True(IsKnownGothram(Other))
	s.False(IsKnownGothram("bharadwaja"))
	s.Contains(HouseNamesFor("Bharadwaja"), "Desuru")
	s.Nil(HouseNamesFor("Unknown"))

	table := Lineages()
	table[0].HouseNames[0] = "mutated"
	s.NotEqual("mutated", Lineages()[0].HouseNames[0], "Lineages must return a copy")
}

package models

import (
	"time"

	dErrors "sangham/pkg/domain-errors"
)

// Status is the review state of a submission.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusApproved
}

// Submission is a single community registration.
//
// Invariants:
//   - Status is pending or approved
//   - ApprovedAt is non-nil iff Status is approved
//   - Submissions using Other for gothram or house name start pending,
//     all others start approved with ApprovedAt = CreatedAt
//   - OtherGothram is only set when Gothram is Other, OtherHouseName only when
//     HouseName is Other
//   - ID is assigned by the store and never changes
//
// Transitions: pending -> approved (Approve) or pending -> deleted (Reject).
// Approved is terminal.
type Submission struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	PhoneNumber    string     `json:"phoneNumber"`
	Community      string     `json:"community"`
	Gothram        string     `json:"gothram"`
	OtherGothram   *string    `json:"otherGothram"`
	HouseName      *string    `json:"houseName"`
	OtherHouseName *string    `json:"otherHouseName"`
	Gender         *string    `json:"gender"`
	DateOfBirth    *string    `json:"dateOfBirth"`
	Address        *string    `json:"address"`
	NativePlace    *string    `json:"nativePlace"`
	State          string     `json:"state"`
	County         string     `json:"county"`
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	ApprovedAt     *time.Time `json:"approvedAt"`
}

// NewSubmission builds an unsaved submission from a normalized, validated
// request and classifies its initial status.
func NewSubmission(req *CreateSubmissionRequest, now time.Time) *Submission {
	s := &Submission{
		Name:           req.Name,
		PhoneNumber:    req.PhoneNumber,
		Community:      req.Community,
		Gothram:        req.Gothram,
		OtherGothram:   req.OtherGothram,
		HouseName:      req.HouseName,
		OtherHouseName: req.OtherHouseName,
		Gender:         req.Gender,
		DateOfBirth:    req.DateOfBirth,
		Address:        req.Address,
		NativePlace:    req.NativePlace,
		State:          req.State,
		County:         req.County,
		CreatedAt:      now,
	}
	if s.NeedsReview() {
		s.Status = StatusPending
		return s
	}
	approvedAt := now
	s.Status = StatusApproved
	s.ApprovedAt = &approvedAt
	return s
}

// NeedsReview reports whether the submission used the Other escape hatch.
func (s *Submission) NeedsReview() bool {
	return s.Gothram == Other || (s.HouseName != nil && *s.HouseName == Other)
}

func (s *Submission) IsPending() bool {
	return s.Status == StatusPending
}

func (s *Submission) IsApproved() bool {
	return s.Status == StatusApproved
}

// ApplyApproval moves a pending submission to approved. ApprovedAt never
// precedes CreatedAt even if the clock stepped backwards.
func (s *Submission) ApplyApproval(now time.Time) {
	if now.Before(s.CreatedAt) {
		now = s.CreatedAt
	}
	s.Status = StatusApproved
	s.ApprovedAt = &now
}

// CanReject checks that the submission is still awaiting review.
func (s *Submission) CanReject() error {
	if !s.IsPending() {
		return dErrors.New(dErrors.CodeConflict, "Only pending submissions can be rejected")
	}
	return nil
}

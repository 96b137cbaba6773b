package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sangham/internal/audit"
	"sangham/internal/submission/metrics"
	"sangham/internal/submission/models"
	dErrors "sangham/pkg/domain-errors"
	"sangham/pkg/platform/sentinel"
	"sangham/pkg/requestcontext"
)

var tracer = otel.Tracer("sangham/submission")

type Store interface {
	Create(ctx context.Context, sub *models.Submission) error
	FindByID(ctx context.Context, id int64) (*models.Submission, error)
	List(ctx context.Context, status *models.Status) ([]*models.Submission, error)
	Approve(ctx context.Context, id int64, approvedAt time.Time) (*models.Submission, error)
	DeletePending(ctx context.Context, id int64) (*models.Submission, error)
	Ping(ctx context.Context) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the submission lifecycle: intake with classification, listing,
// and admin review. Handlers stay thin and the store stays dumb.
type Service struct {
	store            Store
	logger           *slog.Logger
	auditPublisher   AuditPublisher
	metrics          *metrics.Metrics
	defaultCommunity string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithDefaultCommunity sets the community stored when a request omits it.
func WithDefaultCommunity(community string) Option {
	return func(s *Service) {
		s.defaultCommunity = community
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("submission store is required")
	}
	s := &Service{store: store, logger: slog.Default(), defaultCommunity: "Reddy"}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create validates the request, classifies it, and persists it. Submissions
// naming a listed gothram and house are approved immediately; anything using
// Other waits for review.
func (s *Service) Create(ctx context.Context, req *models.CreateSubmissionRequest) (*models.Submission, error) {
	ctx, span := tracer.Start(ctx, "Submission.Service.Create")
	defer span.End()

	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Request body is required")
	}
	req.Normalize()
	if req.Community == "" {
		req.Community = s.defaultCommunity
	}
	now := storedTime(ctx)
	if err := req.Validate(now); err != nil {
		return nil, err
	}

	sub := models.NewSubmission(req, now)
	if err := s.store.Create(ctx, sub); err != nil {
		recordError(span, err)
		return nil, s.persistenceError(ctx, err, "Failed to save submission")
	}
	span.SetAttributes(attribute.Int64("submission.id", sub.ID), attribute.String("submission.status", string(sub.Status)))

	s.emit(ctx, audit.Event{
		Action:       audit.ActionSubmissionCreated,
		Actor:        audit.ActorPublic,
		SubmissionID: sub.ID,
		Gothram:      sub.Gothram,
		Status:       string(sub.Status),
	})
	if s.metrics != nil {
		s.metrics.IncrementCreated(sub.Status)
	}
	return sub, nil
}

func (s *Service) ListAll(ctx context.Context) ([]*models.Submission, error) {
	return s.list(ctx, "Submission.Service.ListAll", nil)
}

func (s *Service) ListApproved(ctx context.Context) ([]*models.Submission, error) {
	status := models.StatusApproved
	return s.list(ctx, "Submission.Service.ListApproved", &status)
}

func (s *Service) ListPending(ctx context.Context) ([]*models.Submission, error) {
	status := models.StatusPending
	return s.list(ctx, "Submission.Service.ListPending", &status)
}

// ListGroupedApproved partitions approved submissions by gothram.
func (s *Service) ListGroupedApproved(ctx context.Context) ([]models.Group, error) {
	approved, err := s.ListApproved(ctx)
	if err != nil {
		return nil, err
	}
	return models.GroupByGothram(approved), nil
}

func (s *Service) list(ctx context.Context, spanName string, status *models.Status) ([]*models.Submission, error) {
	ctx, span := tracer.Start(ctx, spanName)
	defer span.End()

	subs, err := s.store.List(ctx, status)
	if err != nil {
		recordError(span, err)
		return nil, s.persistenceError(ctx, err, "Failed to load submissions")
	}
	span.SetAttributes(attribute.Int("submission.count", len(subs)))
	return subs, nil
}

// Approve moves a pending submission to approved. Approving an already
// approved submission returns it unchanged.
func (s *Service) Approve(ctx context.Context, id int64) (*models.Submission, error) {
	ctx, span := tracer.Start(ctx, "Submission.Service.Approve", trace.WithAttributes(attribute.Int64("submission.id", id)))
	defer span.End()

	current, err := s.find(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	if current.IsApproved() {
		return current, nil
	}

	current.ApplyApproval(storedTime(ctx))
	updated, err := s.store.Approve(ctx, id, *current.ApprovedAt)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrInvalidState):
			// Lost a race with a concurrent review.
			return s.afterConcurrentReview(ctx, id)
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "Submission not found")
		}
		recordError(span, err)
		return nil, s.persistenceError(ctx, err, "Failed to approve submission")
	}

	s.emit(ctx, audit.Event{
		Action:       audit.ActionSubmissionApproved,
		Actor:        requestcontext.AdminActor(ctx),
		SubmissionID: updated.ID,
		Gothram:      updated.Gothram,
		Status:       string(updated.Status),
	})
	if s.metrics != nil {
		s.metrics.IncrementApproved()
	}
	return updated, nil
}

// Reject permanently removes a pending submission and returns it.
func (s *Service) Reject(ctx context.Context, id int64) (*models.Submission, error) {
	ctx, span := tracer.Start(ctx, "Submission.Service.Reject", trace.WithAttributes(attribute.Int64("submission.id", id)))
	defer span.End()

	current, err := s.find(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	if err := current.CanReject(); err != nil {
		return nil, err
	}

	deleted, err := s.store.DeletePending(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, dErrors.New(dErrors.CodeConflict, "Only pending submissions can be rejected")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "Submission not found")
		}
		recordError(span, err)
		return nil, s.persistenceError(ctx, err, "Failed to reject submission")
	}

	s.emit(ctx, audit.Event{
		Action:       audit.ActionSubmissionRejected,
		Actor:        requestcontext.AdminActor(ctx),
		SubmissionID: deleted.ID,
		Gothram:      deleted.Gothram,
		Status:       string(deleted.Status),
	})
	if s.metrics != nil {
		s.metrics.IncrementRejected()
	}
	return deleted, nil
}

// Ping reports whether the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) find(ctx context.Context, id int64) (*models.Submission, error) {
	sub, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Submission not found")
		}
		return nil, s.persistenceError(ctx, err, "Failed to load submission")
	}
	return sub, nil
}

func (s *Service) afterConcurrentReview(ctx context.Context, id int64) (*models.Submission, error) {
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsApproved() {
		return current, nil
	}
	return nil, dErrors.New(dErrors.CodeConflict, "Submission changed during review")
}

func (s *Service) persistenceError(ctx context.Context, err error, message string) error {
	s.logger.ErrorContext(ctx, message,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	return dErrors.Wrap(err, dErrors.CodeInternal, message)
}

// emit records an audit event. Audit failures are logged and never fail the
// operation that triggered them.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	s.logger.InfoContext(ctx, string(event.Action),
		"submission_id", event.SubmissionID,
		"actor", event.Actor,
		"request_id", requestcontext.RequestID(ctx),
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to record audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

// storedTime is the request clock at the precision Postgres keeps, so a
// response body matches what later reads of the same row return.
func storedTime(ctx context.Context) time.Time {
	return requestcontext.Now(ctx).Truncate(time.Microsecond)
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

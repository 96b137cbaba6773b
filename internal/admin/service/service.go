package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"

	"sangham/internal/admin/device"
	"sangham/internal/admin/models"
	"sangham/internal/admin/secrets"
	"sangham/internal/audit"
	"sangham/internal/platform/config"
	dErrors "sangham/pkg/domain-errors"
	"sangham/pkg/platform/middleware/admin"
	"sangham/pkg/platform/sentinel"
	"sangham/pkg/requestcontext"
)

var tracer = otel.Tracer("sangham/admin")

type SessionStore interface {
	Save(ctx context.Context, token string, session *models.Session) error
	Find(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service gates the admin area behind a shared secret. A successful login
// mints an opaque token that stays valid until logout.
type Service struct {
	sessions       SessionStore
	secret         config.AdminConfig
	logger         *slog.Logger
	auditPublisher AuditPublisher
	newToken       func() (string, error)
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

// WithTokenGenerator replaces the random token source. Tests only.
func WithTokenGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		s.newToken = fn
	}
}

func New(sessions SessionStore, secret config.AdminConfig, opts ...Option) (*Service, error) {
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	s := &Service{
		sessions: sessions,
		secret:   secret,
		logger:   slog.Default(),
		newToken: secrets.GenerateToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Login checks password against the configured secret and opens a session.
func (s *Service) Login(ctx context.Context, password string) (string, error) {
	ctx, span := tracer.Start(ctx, "Admin.Service.Login")
	defer span.End()

	if err := s.verify(password); err != nil {
		if errors.Is(err, secrets.ErrMismatch) {
			s.emit(ctx, audit.ActionAdminLoginFailed, audit.ActorPublic)
			return "", dErrors.New(dErrors.CodeUnauthorized, "Invalid password")
		}
		span.RecordError(err)
		return "", err
	}

	token, err := s.newToken()
	if err != nil {
		span.RecordError(err)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "Failed to create session")
	}
	session := &models.Session{
		CreatedAt: requestcontext.Now(ctx),
		Device:    device.ParseUserAgent(requestcontext.UserAgent(ctx)),
		ClientIP:  requestcontext.ClientIP(ctx),
	}
	if err := s.sessions.Save(ctx, token, session); err != nil {
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "failed to save admin session",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "Failed to create session")
	}

	s.emit(ctx, audit.ActionAdminLogin, admin.ActorLabel(token))
	return token, nil
}

// Logout removes token from the session set. Unknown or empty tokens are
// accepted silently.
func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := tracer.Start(ctx, "Admin.Service.Logout")
	defer span.End()

	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		span.RecordError(err)
		return dErrors.Wrap(err, dErrors.CodeInternal, "Failed to end session")
	}
	s.emit(ctx, audit.ActionAdminLogout, admin.ActorLabel(token))
	return nil
}

// IsAuthenticated reports whether token is a live session.
func (s *Service) IsAuthenticated(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	_, err := s.sessions.Find(ctx, token)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return false, nil
	default:
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to verify session")
	}
}

func (s *Service) verify(password string) error {
	switch {
	case s.secret.PasswordHash != "":
		err := secrets.VerifyHash(password, s.secret.PasswordHash)
		if err != nil && !errors.Is(err, secrets.ErrMismatch) {
			return dErrors.Wrap(err, dErrors.CodeMisconfigured, "Admin password is not configured correctly")
		}
		return err
	case s.secret.Password != "":
		return secrets.VerifyPlain(password, s.secret.Password)
	default:
		return dErrors.New(dErrors.CodeMisconfigured, "Admin password is not configured")
	}
}

func (s *Service) emit(ctx context.Context, action audit.Action, actor string) {
	label := device.ParseUserAgent(requestcontext.UserAgent(ctx))
	s.logger.InfoContext(ctx, string(action),
		"actor", actor,
		"device", label,
		"request_id", requestcontext.RequestID(ctx),
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{Action: action, Actor: actor, Device: label}); err != nil {
		s.logger.WarnContext(ctx, "failed to record audit event",
			"action", action,
			"error", err,
		)
	}
}

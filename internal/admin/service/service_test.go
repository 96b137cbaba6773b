package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks SessionStore,AuditPublisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"sangham/internal/admin/models"
	"sangham/internal/admin/secrets"
	"sangham/internal/admin/service/mocks"
	"sangham/internal/admin/store"
	"sangham/internal/audit"
	"sangham/internal/platform/config"
	dErrors "sangham/pkg/domain-errors"
	"sangham/pkg/platform/sentinel"
	"sangham/pkg/requestcontext"
)

const (
	password = "open-sesame"
	token    = "fixed-token"
)

type AdminServiceSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockSessions *mocks.MockSessionStore
	mockAudit    *mocks.MockAuditPublisher
	service      *Service
	ctx          context.Context
	now          time.Time
}

func TestAdminServiceSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceSuite))
}

func (s *AdminServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockSessions = mocks.NewMockSessionStore(s.ctrl)
	s.mockAudit = mocks.NewMockAuditPublisher(s.ctrl)

	var err error
	s.service, err = New(s.mockSessions, config.AdminConfig{Password: password},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(s.mockAudit),
		WithTokenGenerator(func() (string, error) { return token, nil }),
	)
	s.Require().NoError(err)

	s.now = time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), s.now)
	s.ctx = requestcontext.WithClientMetadata(ctx, "198.51.100.7",
		"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0")
}

func (s *AdminServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AdminServiceSuite) TestNew() {
	_, err := New(nil, config.AdminConfig{})
	s.Require().Error(err)
	s.Contains(err.Error(), "session store is required")
}

func (s *AdminServiceSuite) TestLogin() {
	s.Run("correct password opens a session", func() {
		s.mockSessions.EXPECT().Save(gomock.Any(), token, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, session *models.Session) error {
				s.Equal(s.now, session.CreatedAt)
				s.Equal("198.51.100.7", session.ClientIP)
				s.Contains(session.Device, "Firefox")
				return nil
			})
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, ev audit.Event) error {
				s.Equal(audit.ActionAdminLogin, ev.Action)
				s.NotContains(ev.Actor, token)
				return nil
			})

		got, err := s.service.Login(s.ctx, password)
		s.Require().NoError(err)
		s.Equal(token, got)
	})

	for _, wrong := range []string{"", "open", "OPEN-SESAME", "open-sesame ", "open-sesame-and-more"} {
		s.Run("rejects "+wrong, func() {
			s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, ev audit.Event) error {
					s.Equal(audit.ActionAdminLoginFailed, ev.Action)
					return nil
				})

			_, err := s.service.Login(s.ctx, wrong)
			s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		})
	}

	s.Run("store failure is internal", func() {
		s.mockSessions.EXPECT().Save(gomock.Any(), token, gomock.Any()).Return(sentinel.ErrUnavailable)

		_, err := s.service.Login(s.ctx, password)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("token generation failure is internal", func() {
		svc, err := New(s.mockSessions, config.AdminConfig{Password: password},
			WithTokenGenerator(func() (string, error) { return "", errors.New("entropy exhausted") }))
		s.Require().NoError(err)

		_, err = svc.Login(s.ctx, password)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *AdminServiceSuite) TestLoginMisconfigured() {
	svc, err := New(s.mockSessions, config.AdminConfig{})
	s.Require().NoError(err)

	_, err = svc.Login(s.ctx, "")
	s.True(dErrors.HasCode(err, dErrors.CodeMisconfigured))

	svc, err = New(s.mockSessions, config.AdminConfig{PasswordHash: "garbage"})
	s.Require().NoError(err)
	_, err = svc.Login(s.ctx, "anything")
	s.True(dErrors.HasCode(err, dErrors.CodeMisconfigured))
}

func (s *AdminServiceSuite) TestLogout() {
	s.Run("deletes the session", func() {
		s.mockSessions.EXPECT().Delete(gomock.Any(), token).Return(nil)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
		s.NoError(s.service.Logout(s.ctx, token))
	})

	s.Run("empty token is a no-op", func() {
		s.NoError(s.service.Logout(s.ctx, ""))
	})

	s.Run("store failure is internal", func() {
		s.mockSessions.EXPECT().Delete(gomock.Any(), token).Return(sentinel.ErrUnavailable)
		err := s.service.Logout(s.ctx, token)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *AdminServiceSuite) TestIsAuthenticated() {
	s.Run("live session", func() {
		s.mockSessions.EXPECT().Find(gomock.Any(), token).Return(&models.Session{}, nil)
		ok, err := s.service.IsAuthenticated(s.ctx, token)
		s.Require().NoError(err)
		s.True(ok)
	})

	s.Run("unknown token", func() {
		s.mockSessions.EXPECT().Find(gomock.Any(), "other").Return(nil, sentinel.ErrNotFound)
		ok, err := s.service.IsAuthenticated(s.ctx, "other")
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("empty token never hits the store", func() {
		ok, err := s.service.IsAuthenticated(s.ctx, "")
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("store failure surfaces", func() {
		s.mockSessions.EXPECT().Find(gomock.Any(), token).Return(nil, sentinel.ErrUnavailable)
		_, err := s.service.IsAuthenticated(s.ctx, token)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

// TestSessionLifecycle runs against the in-memory store: a token is accepted
// from login until logout, and concurrent sessions are independent.
func TestSessionLifecycle(t *testing.T) {
	hash, err := secrets.Hash(password)
	require.NoError(t, err)
	svc, err := New(store.NewInMemory(), config.AdminConfig{PasswordHash: hash})
	require.NoError(t, err)
	ctx := context.Background()

	first, err := svc.Login(ctx, password)
	require.NoError(t, err)
	second, err := svc.Login(ctx, password)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	for _, tok := range []string{first, second} {
		ok, err := svc.IsAuthenticated(ctx, tok)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	require.NoError(t, svc.Logout(ctx, first))
	ok, err := svc.IsAuthenticated(ctx, first)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsAuthenticated(ctx, second)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Login(ctx, "not-it")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

// TestHashedSecretRejectsLongerPasswords covers bcrypt's 72-byte input limit:
// a password sharing the secret's full 72-byte prefix must not log in.
func TestHashedSecretRejectsLongerPasswords(t *testing.T) {
	secret := strings.Repeat("s", secrets.MaxHashedLen)
	hash, err := secrets.Hash(secret)
	require.NoError(t, err)
	svc, err := New(store.NewInMemory(), config.AdminConfig{PasswordHash: hash})
	require.NoError(t, err)
	ctx := context.Background()

	for _, attempt := range []string{secret + "EXTRA", secret + "s", secret + strings.Repeat("x", 500)} {
		tok, err := svc.Login(ctx, attempt)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized), "len %d", len(attempt))
		assert.Empty(t, tok)
	}

	tok, err := svc.Login(ctx, secret)
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
}

package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sangham/internal/admin/models"
	dErrors "sangham/pkg/domain-errors"
	"sangham/pkg/platform/httputil"
	"sangham/pkg/platform/middleware/admin"
	request "sangham/pkg/platform/middleware/request"
)

const maxBodyBytes = 4 << 10

// Service defines the admin session operations.
type Service interface {
	Login(ctx context.Context, password string) (string, error)
	Logout(ctx context.Context, token string) error
	IsAuthenticated(ctx context.Context, token string) (bool, error)
}

// Handler serves login, logout and session status.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/admin/login", h.handleLogin)
	r.Post("/api/admin/logout", h.handleLogout)
	r.Get("/api/admin/status", h.handleStatus)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	var req models.LoginRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid login body",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}

	token, err := h.service.Login(ctx, req.Password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			h.logger.WarnContext(ctx, "admin login rejected", "request_id", requestID)
		} else {
			h.logger.ErrorContext(ctx, "admin login failed",
				"request_id", requestID,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.LoginResponse{Success: true, Token: token})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.Logout(ctx, r.Header.Get(admin.HeaderAdminToken)); err != nil {
		h.logger.ErrorContext(ctx, "admin logout failed",
			"request_id", request.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.LogoutResponse{Success: true})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ok, err := h.service.IsAuthenticated(ctx, r.Header.Get(admin.HeaderAdminToken))
	if err != nil {
		h.logger.ErrorContext(ctx, "admin status check failed",
			"request_id", request.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.StatusResponse{IsAuthenticated: ok})
}

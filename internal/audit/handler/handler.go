package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sangham/internal/audit"
	dErrors "sangham/pkg/domain-errors"
	"sangham/pkg/platform/httputil"
	request "sangham/pkg/platform/middleware/request"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

type Lister interface {
	List(ctx context.Context, limit int) ([]audit.Event, error)
}

// Handler exposes recent audit events to admins.
type Handler struct {
	lister Lister
	logger *slog.Logger
}

func New(lister Lister, logger *slog.Logger) *Handler {
	return &Handler{lister: lister, logger: logger}
}

func (h *Handler) Register(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.With(requireAdmin).Get("/api/admin/audit", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = min(n, maxLimit)
	}

	events, err := h.lister.List(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"request_id", request.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to load audit events"))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}

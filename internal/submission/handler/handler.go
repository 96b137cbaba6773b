package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sangham/internal/submission/models"
	dErrors "sangham/pkg/domain-errors"
	"sangham/pkg/platform/httputil"
	request "sangham/pkg/platform/middleware/request"
)

// maxBodyBytes caps the registration payload.
const maxBodyBytes = 64 << 10

// Service defines the submission operations the HTTP layer needs.
type Service interface {
	Create(ctx context.Context, req *models.CreateSubmissionRequest) (*models.Submission, error)
	ListAll(ctx context.Context) ([]*models.Submission, error)
	ListApproved(ctx context.Context) ([]*models.Submission, error)
	ListPending(ctx context.Context) ([]*models.Submission, error)
	ListGroupedApproved(ctx context.Context) ([]models.Group, error)
	Approve(ctx context.Context, id int64) (*models.Submission, error)
	Reject(ctx context.Context, id int64) (*models.Submission, error)
}

// Handler serves the public registration form and the admin review queue.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RejectResponse acknowledges a rejection.
type RejectResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

// Register mounts the routes. requireAdmin guards everything except the
// public create and lineage lookups.
func (h *Handler) Register(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Get("/api/lineages", h.handleLineages)
	r.Route("/api/submissions", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/", h.handleListAll)
			r.Get("/grouped", h.handleListGrouped)
			r.Get("/pending", h.handleListPending)
			r.Get("/approved", h.handleListApproved)
			r.Post("/{id}/approve", h.handleApprove)
			r.Post("/{id}/reject", h.handleReject)
		})
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	var req models.CreateSubmissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid submission body",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return
	}

	sub, err := h.service.Create(ctx, &req)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to create submission", err)
		return
	}

	h.logger.InfoContext(ctx, "submission created",
		"request_id", requestID,
		"submission_id", sub.ID,
		"status", sub.Status,
	)
	httputil.WriteJSON(w, http.StatusCreated, sub)
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	subs, err := h.service.ListAll(r.Context())
	h.writeList(w, r, subs, err)
}

func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	subs, err := h.service.ListPending(r.Context())
	h.writeList(w, r, subs, err)
}

func (h *Handler) handleListApproved(w http.ResponseWriter, r *http.Request) {
	subs, err := h.service.ListApproved(r.Context())
	h.writeList(w, r, subs, err)
}

func (h *Handler) handleListGrouped(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListGroupedApproved(r.Context())
	if err != nil {
		h.writeServiceError(r.Context(), w, "failed to group submissions", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, groups)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sub, err := h.service.Approve(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to approve submission", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sub)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if _, err := h.service.Reject(ctx, id); err != nil {
		h.writeServiceError(ctx, w, "failed to reject submission", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RejectResponse{Success: true, ID: id})
}

func (h *Handler) handleLineages(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, models.Lineages())
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, subs []*models.Submission, err error) {
	if err != nil {
		h.writeServiceError(r.Context(), w, "failed to list submissions", err)
		return
	}
	if subs == nil {
		subs = []*models.Submission{}
	}
	httputil.WriteJSON(w, http.StatusOK, subs)
}

// writeServiceError logs 4xx at warn and 5xx at error, then writes the envelope.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelWarn
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", request.GetRequestID(ctx),
		"error", err.Error(),
	)
	httputil.WriteError(w, err)
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "Invalid submission id")
	}
	return id, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	return nil
}

package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhandler "sangham/internal/admin/handler"
	audithandler "sangham/internal/audit/handler"
	"sangham/internal/platform/metrics"
	"sangham/internal/platform/middleware"
	submissionhandler "sangham/internal/submission/handler"
	"sangham/pkg/platform/httputil"
	"sangham/pkg/platform/middleware/admin"
	"sangham/pkg/platform/middleware/metadata"
	request "sangham/pkg/platform/middleware/request"
	"sangham/pkg/platform/middleware/requesttime"
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// Deps collects everything the router mounts. Audit and Gatherer are optional.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
	Sessions       admin.SessionChecker
	Submissions    *submissionhandler.Handler
	Admin          *adminhandler.Handler
	Audit          *audithandler.Handler
	HealthChecks   map[string]HealthCheck
}

type healthResponse struct {
	Status  string   `json:"status"`
	Failing []string `json:"failing,omitempty"`
}

// NewRouter wires the middleware chain and every route.
func NewRouter(d Deps) http.Handler {
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.Latency(d.Metrics))

	r.Get("/health", healthHandler(d.HealthChecks, d.Logger))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	requireAdmin := admin.RequireAdminSession(d.Sessions, d.Logger)
	d.Submissions.Register(r, requireAdmin)
	d.Admin.Register(r)
	if d.Audit != nil {
		d.Audit.Register(r, requireAdmin)
	}
	return r
}

func healthHandler(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		var failing []string
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed",
					"request_id", request.GetRequestID(ctx),
					"dependency", name,
					"error", err.Error(),
				)
				failing = append(failing, name)
			}
		}
		if len(failing) > 0 {
			sort.Strings(failing)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Failing: failing})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}

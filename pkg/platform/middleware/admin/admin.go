package admin

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"

	request "sangham/pkg/platform/middleware/request"
	"sangham/pkg/requestcontext"
)

// HeaderAdminToken carries the opaque admin session token.
const HeaderAdminToken = "X-Admin-Token"

// SessionChecker reports whether a token belongs to a live admin session.
type SessionChecker interface {
	IsAuthenticated(ctx context.Context, token string) (bool, error)
}

// RequireAdminSession rejects requests whose X-Admin-Token is missing or not a
// member of the session store.
func RequireAdminSession(checker SessionChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)
			token := r.Header.Get(HeaderAdminToken)
			if token == "" {
				logger.WarnContext(ctx, "admin token missing",
					"request_id", requestID,
				)
				writeUnauthorized(w)
				return
			}

			ok, err := checker.IsAuthenticated(ctx, token)
			if err != nil {
				logger.ErrorContext(ctx, "admin session lookup failed",
					"request_id", requestID,
					"error", err,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal_error","message":"Failed to verify session"}`))
				return
			}
			if !ok {
				logger.WarnContext(ctx, "admin token rejected",
					"request_id", requestID,
				)
				writeUnauthorized(w)
				return
			}

			ctx = requestcontext.WithAdminActor(ctx, ActorLabel(token))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorLabel derives a stable, non-reversible label for a session token so
// audit records can tell sessions apart without storing the credential.
func ActorLabel(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "admin:" + hex.EncodeToString(sum[:4])
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"Unauthorized"}`))
}

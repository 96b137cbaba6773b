package testutil

import (
	"net/http"
	"time"

	"sangham/pkg/platform/middleware/admin"
	"sangham/pkg/requestcontext"
)

// WithAdminToken sets the admin session header on req.
func WithAdminToken(req *http.Request, token string) *http.Request {
	req.Header.Set(admin.HeaderAdminToken, token)
	return req
}

// WithRequestTime pins the request-scoped clock, simulating the requesttime
// middleware for handlers invoked directly.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

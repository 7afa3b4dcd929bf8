package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// routePattern is the matched chi pattern, e.g.
// /api/v1/conversations/{sessionID}/stt. Only valid once routing has run.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// requestAttrs are the slog attributes shared by the request logger and
// panic recovery.
func requestAttrs(r *http.Request) []any {
	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"route", routePattern(r),
	}
	if id := chi.URLParam(r, "sessionID"); id != "" {
		attrs = append(attrs, "session_uuid", id)
	}
	return attrs
}

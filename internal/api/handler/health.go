package handler

import (
	"context"
	"net/http"

	"github.com/kiranshivaraju/voicedesk/internal/api/response"
)

// Pinger is satisfied by the store and the cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler returns an http.HandlerFunc for GET /api/v1/health.
func NewHealthHandler(db, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbStatus := "ok"
		if err := db.Ping(r.Context()); err != nil {
			dbStatus = "error"
		}
		cacheStatus := "ok"
		if err := cache.Ping(r.Context()); err != nil {
			cacheStatus = "error"
		}

		if dbStatus != "ok" || cacheStatus != "ok" {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"database: "+dbStatus+", cache: "+cacheStatus)
			return
		}

		response.JSON(w, map[string]string{
			"status":   "ok",
			"database": dbStatus,
			"cache":    cacheStatus,
		})
	}
}

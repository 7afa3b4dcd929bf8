package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/voicedesk/internal/api/response"
	"github.com/kiranshivaraju/voicedesk/pkg/models"
)

// LogLister defines the interface the log handler depends on.
type LogLister interface {
	ListLogs(ctx context.Context, id *uuid.UUID) ([]*models.LogEntry, error)
}

// NewListLogsHandler returns an http.HandlerFunc for GET /api/v1/logs.
// The optional session_uuid query parameter filters to one session; a value
// that is not a UUID matches nothing.
func NewListLogsHandler(svc LogLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter *uuid.UUID
		if raw := r.URL.Query().Get("session_uuid"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				response.JSON(w, []*models.LogEntry{})
				return
			}
			filter = &id
		}

		entries, err := svc.ListLogs(r.Context(), filter)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if entries == nil {
			entries = []*models.LogEntry{}
		}

		response.JSON(w, entries)
	}
}

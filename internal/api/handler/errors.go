package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/voicedesk/internal/api/response"
	"github.com/kiranshivaraju/voicedesk/internal/intake"
)

// writeError maps intake sentinel errors to envelope codes. Unknown errors are
// logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, intake.ErrInvalidText):
		response.Error(w, http.StatusBadRequest, "INVALID_TEXT", "분석할 텍스트가 없습니다.")
	case errors.Is(err, intake.ErrInvalidRequest):
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, intake.ErrSessionNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Session not found")
	case errors.Is(err, intake.ErrComplaintNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Complaint not found")
	case errors.Is(err, intake.ErrAlreadyFinalized):
		response.Error(w, http.StatusConflict, "ALREADY_FINALIZED", "Session already finalized")
	case errors.Is(err, intake.ErrStorage):
		slog.ErrorContext(r.Context(), "storage failure", "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusInternalServerError, "STORAGE_FAILURE", "Failed to persist data")
	default:
		slog.ErrorContext(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	}
}

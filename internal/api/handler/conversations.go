package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/voicedesk/internal/api/response"
	"github.com/kiranshivaraju/voicedesk/internal/intake"
	"github.com/kiranshivaraju/voicedesk/pkg/models"
)

// audioField is the multipart form field carrying the recording.
const audioField = "audio_file"

// Intake defines the conversation operations the handlers depend on.
type Intake interface {
	Start(ctx context.Context, debugMode bool) (*models.Session, error)
	Transcribe(ctx context.Context, id uuid.UUID, audio []byte, filename string) (string, error)
	Analyze(ctx context.Context, id uuid.UUID, rawText string) (models.AnalysisResult, error)
	Confirm(ctx context.Context, id uuid.UUID, confirmed bool) (string, error)
	Finalize(ctx context.Context, id uuid.UUID, req intake.FinalizeRequest) (*intake.FinalizeResult, error)
}

// NewStartHandler returns an http.HandlerFunc for POST /api/v1/conversations/start.
// An empty body starts a non-debug session.
func NewStartHandler(svc Intake) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			DebugMode bool `json:"debug_mode"`
		}
		if !decodeOptional(w, r, &req) {
			return
		}

		sess, err := svc.Start(r.Context(), req.DebugMode)
		if err != nil {
			writeError(w, r, err)
			return
		}

		response.JSON(w, map[string]any{
			"session_uuid": sess.ID,
			"status":       sess.Status,
		})
	}
}

// NewSTTHandler returns an http.HandlerFunc for POST /api/v1/conversations/{sessionID}/stt.
func NewSTTHandler(svc Intake, maxAudioBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}

		// Leave headroom for multipart boundaries and headers.
		r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes+64<<10)
		file, header, err := r.FormFile(audioField)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Error(w, http.StatusRequestEntityTooLarge, "INVALID_REQUEST", "audio file too large")
				return
			}
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", audioField+" is required")
			return
		}
		defer file.Close()

		audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes+1))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "failed to read audio file")
			return
		}
		if int64(len(audio)) > maxAudioBytes {
			response.Error(w, http.StatusRequestEntityTooLarge, "INVALID_REQUEST", "audio file too large")
			return
		}

		text, err := svc.Transcribe(r.Context(), id, audio, header.Filename)
		if err != nil {
			writeError(w, r, err)
			return
		}

		response.JSON(w, map[string]string{"raw_text": text})
	}
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /api/v1/conversations/{sessionID}/analyze.
func NewAnalyzeHandler(svc Intake) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}

		var req struct {
			RawText string `json:"raw_text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
			return
		}

		result, err := svc.Analyze(r.Context(), id, req.RawText)
		if err != nil {
			writeError(w, r, err)
			return
		}

		response.JSON(w, result)
	}
}

// NewConfirmHandler returns an http.HandlerFunc for POST /api/v1/conversations/{sessionID}/confirm.
func NewConfirmHandler(svc Intake) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}

		var req struct {
			IsConfirmed *bool `json:"is_confirmed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
			return
		}
		if req.IsConfirmed == nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "is_confirmed is required")
			return
		}

		next, err := svc.Confirm(r.Context(), id, *req.IsConfirmed)
		if err != nil {
			writeError(w, r, err)
			return
		}

		response.JSON(w, map[string]string{"next_step": next})
	}
}

// NewFinalizeHandler returns an http.HandlerFunc for POST /api/v1/conversations/{sessionID}/finalize.
func NewFinalizeHandler(svc Intake) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}

		var req struct {
			RawText      string `json:"raw_text"`
			SummaryText  string `json:"summary_text"`
			Category     string `json:"category"`
			Severity     string `json:"severity"`
			HandlingType string `json:"handling_type"`
			HandlingDesc string `json:"handling_desc"`
			IsConfirmed  *bool  `json:"is_confirmed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
			return
		}

		result, err := svc.Finalize(r.Context(), id, intake.FinalizeRequest{
			RawText:      req.RawText,
			SummaryText:  req.SummaryText,
			Category:     req.Category,
			Severity:     req.Severity,
			HandlingType: req.HandlingType,
			HandlingDesc: req.HandlingDesc,
			IsConfirmed:  req.IsConfirmed,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		response.JSON(w, map[string]any{
			"complaint_id": result.ComplaintID,
			"user_message": result.UserMessage,
			"redirect":     result.Redirect,
		})
	}
}

// sessionID parses the {sessionID} URL parameter. A value that is not a UUID
// cannot name a session, so it is reported as NOT_FOUND.
func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Session not found")
		return uuid.Nil, false
	}
	return id, true
}

func decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
	return false
}

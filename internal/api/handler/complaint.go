package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/voicedesk/internal/api/response"
	"github.com/kiranshivaraju/voicedesk/internal/intake"
	"github.com/kiranshivaraju/voicedesk/pkg/models"
)

// ComplaintReader defines the interface the complaint handler depends on.
type ComplaintReader interface {
	GetComplaint(ctx context.Context, id uuid.UUID) (*intake.ComplaintRecord, error)
}

// NewGetComplaintHandler returns an http.HandlerFunc for
// GET /api/v1/conversations/{sessionID}/complaint.
func NewGetComplaintHandler(svc ComplaintReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}

		rec, err := svc.GetComplaint(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}

		handling := rec.Handling
		if handling == nil {
			handling = []*models.ComplaintHandling{}
		}
		response.JSON(w, map[string]any{
			"complaint": rec.Complaint,
			"handling":  handling,
		})
	}
}

package audit

import (
	"encoding/json"
	"fmt"

	"github.com/kiranshivaraju/voicedesk/pkg/models"
)

// Payload is the closed set of step-specific audit payloads. The step tag of
// an entry is always taken from its payload, so the two cannot disagree.
type Payload interface {
	Step() models.Step
	sealed()
}

// SessionPayload is recorded when a conversation starts.
type SessionPayload struct {
	DebugMode bool `json:"debug_mode"`
}

// STTPayload is recorded after speech-to-text.
type STTPayload struct {
	RawText    string `json:"raw_text"`
	Size       int    `json:"size"`
	Filename   string `json:"filename"`
	Provider   string `json:"provider"`
	Fallback   bool   `json:"fallback"`
	ArchiveKey string `json:"archive_key,omitempty"`
}

// AnalyzePayload carries the full classifier output.
type AnalyzePayload struct {
	models.AnalysisResult
}

// ConfirmPayload is recorded when the citizen accepts or rejects the analysis.
type ConfirmPayload struct {
	IsConfirmed bool   `json:"is_confirmed"`
	NextStep    string `json:"next_step"`
}

// PersistPayload is recorded once the complaint row is written.
type PersistPayload struct {
	ComplaintID int64           `json:"complaint_id"`
	Category    models.Category `json:"category"`
	Severity    models.Severity `json:"severity"`
}

func (SessionPayload) Step() models.Step { return models.StepSession }
func (STTPayload) Step() models.Step     { return models.StepSTT }
func (AnalyzePayload) Step() models.Step { return models.StepAnalyze }
func (ConfirmPayload) Step() models.Step { return models.StepConfirm }
func (PersistPayload) Step() models.Step { return models.StepDBSave }

func (SessionPayload) sealed() {}
func (STTPayload) sealed()     {}
func (AnalyzePayload) sealed() {}
func (ConfirmPayload) sealed() {}
func (PersistPayload) sealed() {}

// DecodePayload parses a stored payload back into the variant for step.
func DecodePayload(step models.Step, raw json.RawMessage) (Payload, error) {
	var p Payload
	switch step {
	case models.StepSession:
		p = &SessionPayload{}
	case models.StepSTT:
		p = &STTPayload{}
	case models.StepAnalyze:
		p = &AnalyzePayload{}
	case models.StepConfirm:
		p = &ConfirmPayload{}
	case models.StepDBSave:
		p = &PersistPayload{}
	default:
		return nil, fmt.Errorf("unknown audit step %q", step)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty payload for step %s", step)
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", step, err)
	}
	return p, nil
}

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Step identifies the pipeline stage an audit entry belongs to.
type Step string

const (
	StepSession Step = "SESSION"
	StepSTT     Step = "STT"
	StepAnalyze Step = "ANALYZE"
	StepConfirm Step = "CONFIRM"
	StepDBSave  Step = "DB_SAVE"
)

// LogLevel is the severity of an audit line, unrelated to complaint Severity.
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// LogEntry is one append-only audit record. Payload holds the raw JSON of the
// step-specific payload; internal/audit decodes it into its typed variant.
type LogEntry struct {
	ID        int64           `db:"id"           json:"-"`
	SessionID uuid.UUID       `db:"session_uuid" json:"session_uuid"`
	Step      Step            `db:"step"         json:"step"`
	Level     LogLevel        `db:"level"        json:"level"`
	Message   string          `db:"message"      json:"message"`
	Payload   json.RawMessage `db:"payload"      json:"payload,omitempty"`
	CreatedAt time.Time       `db:"created_at"   json:"created_at"`
}

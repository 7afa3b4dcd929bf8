package models

import (
	"time"

	"github.com/google/uuid"
)

// Complaint is the final record produced when a session is finalized.
// A session owns at most one complaint and complaints are never updated.
type Complaint struct {
	ID           int64        `db:"id"            json:"id"`
	SessionID    uuid.UUID    `db:"session_uuid"  json:"session_uuid"`
	RawText      string       `db:"raw_text"      json:"raw_text"`
	SummaryText  string       `db:"summary_text"  json:"summary_text"`
	Category     Category     `db:"category"      json:"category"`
	Severity     Severity     `db:"severity"      json:"severity"`
	HandlingType HandlingType `db:"handling_type" json:"handling_type"`
	HandlingDesc string       `db:"handling_desc" json:"handling_desc"`
	IsConfirmed  bool         `db:"is_confirmed"  json:"is_confirmed"`
	CreatedAt    time.Time    `db:"created_at"    json:"created_at"`
}

// ComplaintHandling tracks back-office work on a complaint. No endpoint writes
// these rows yet; the table exists so handling can be recorded out of band.
type ComplaintHandling struct {
	ID          int64     `db:"id"           json:"id"`
	ComplaintID int64     `db:"complaint_id" json:"complaint_id"`
	HandlerName *string   `db:"handler_name" json:"handler_name,omitempty"`
	HandlerDept *string   `db:"handler_dept" json:"handler_dept,omitempty"`
	Status      string    `db:"status"       json:"status"`
	Note        *string   `db:"note"         json:"note,omitempty"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a conversation session.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionCompleted  SessionStatus = "COMPLETED"
)

// Terminal reports whether no further transitions are allowed from s.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted
}

// Session is one end-to-end complaint intake conversation.
// EndedAt is set if and only if Status is terminal.
type Session struct {
	ID        uuid.UUID     `db:"session_uuid" json:"session_uuid"`
	DebugMode bool          `db:"debug_mode"   json:"debug_mode"`
	Status    SessionStatus `db:"status"       json:"status"`
	StartedAt time.Time     `db:"started_at"   json:"started_at"`
	EndedAt   *time.Time    `db:"ended_at"     json:"ended_at,omitempty"`
}

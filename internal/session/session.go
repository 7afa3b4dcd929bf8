// Package session implements the conversation session lifecycle. The only
// observable status transition is IN_PROGRESS -> COMPLETED; intermediate
// pipeline stages are tracked by the audit log, not by status.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/voicedesk/pkg/models"
)

var ErrInvalidTransition = errors.New("invalid session status transition")

var validTransitions = map[models.SessionStatus][]models.SessionStatus{
	models.SessionInProgress: {models.SessionCompleted},
}

// New creates an IN_PROGRESS session with a fresh random identifier.
func New(debugMode bool, now time.Time) *models.Session {
	return &models.Session{
		ID:        uuid.New(),
		DebugMode: debugMode,
		Status:    models.SessionInProgress,
		StartedAt: now.UTC(),
	}
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to models.SessionStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves s to the given status, setting EndedAt when the new
// status is terminal.
func Transition(s *models.Session, to models.SessionStatus, now time.Time) error {
	if !CanTransition(s.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, to)
	}
	s.Status = to
	if to.Terminal() {
		ended := now.UTC()
		s.EndedAt = &ended
	}
	return nil
}

// Complete marks the session finished.
func Complete(s *models.Session, now time.Time) error {
	return Transition(s, models.SessionCompleted, now)
}

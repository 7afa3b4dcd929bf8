// Package audit is the append-only, session-scoped record of pipeline steps.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/voicedesk/pkg/models"
)

// Store is the persistence the audit log needs. Each append must be a single
// atomic insert.
type Store interface {
	AppendLog(ctx context.Context, entry *models.LogEntry) error
	ListLogs(ctx context.Context, sessionID *uuid.UUID) ([]*models.LogEntry, error)
}

// Log appends and queries audit entries.
type Log struct {
	store Store
	clock *Clock
}

// NewLog creates a Log. A nil clock uses the wall clock.
func NewLog(s Store, clock *Clock) *Log {
	if clock == nil {
		clock = NewClock(nil)
	}
	return &Log{store: s, clock: clock}
}

// Append records one pipeline step for a session. It fails only when the
// payload cannot be encoded or storage is unavailable.
func (l *Log) Append(ctx context.Context, sessionID uuid.UUID, level models.LogLevel, message string, payload Payload) error {
	if payload == nil {
		return fmt.Errorf("audit payload is required")
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", payload.Step(), err)
	}

	entry := &models.LogEntry{
		SessionID: sessionID,
		Step:      payload.Step(),
		Level:     level,
		Message:   message,
		Payload:   raw,
		CreatedAt: l.clock.Now(),
	}
	if err := l.store.AppendLog(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	slog.DebugContext(ctx, "audit entry appended",
		"session_uuid", sessionID,
		"step", entry.Step,
		"level", entry.Level,
	)
	return nil
}

// Query returns entries ordered by created_at ascending. A nil sessionID
// returns entries across all sessions. Same-timestamp entries keep the
// storage order, which is insertion order.
func (l *Log) Query(ctx context.Context, sessionID *uuid.UUID) ([]*models.LogEntry, error) {
	entries, err := l.store.ListLogs(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	if entries == nil {
		entries = []*models.LogEntry{}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

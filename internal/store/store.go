package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/voicedesk/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)

	// FinalizeSession writes the complaint and completes its session in one
	// transaction. The complaint's ID is filled in on success.
	FinalizeSession(ctx context.Context, c *models.Complaint, endedAt time.Time) error
	GetComplaintBySession(ctx context.Context, sessionID uuid.UUID) (*models.Complaint, error)
	ListComplaintHandling(ctx context.Context, complaintID int64) ([]*models.ComplaintHandling, error)

	AppendLog(ctx context.Context, entry *models.LogEntry) error
	ListLogs(ctx context.Context, sessionID *uuid.UUID) ([]*models.LogEntry, error)
}

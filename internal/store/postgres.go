package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kiranshivaraju/voicedesk/internal/session"
	"github.com/kiranshivaraju/voicedesk/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// --- Sessions ---

func (s *PostgresStore) CreateSession(ctx context.Context, sess *models.Session) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO conversation_session (session_uuid, started_at, debug_mode, status)
		 VALUES ($1, $2, $3, $4)`,
		sess.ID.String(), sess.StartedAt, sess.DebugMode, string(sess.Status))
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var (
		sess   models.Session
		rawID  string
		status string
	)
	err := s.db.QueryRow(ctx,
		`SELECT session_uuid, debug_mode, status, started_at, ended_at
		 FROM conversation_session WHERE session_uuid = $1`, id.String(),
	).Scan(&rawID, &sess.DebugMode, &status, &sess.StartedAt, &sess.EndedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parse session id: %w", err)
	}
	sess.Status = models.SessionStatus(status)
	return &sess, nil
}

// completeSession validates the transition against the locked row and marks
// the session COMPLETED. It must run inside the finalize transaction.
func completeSession(ctx context.Context, tx pgx.Tx, id uuid.UUID, endedAt time.Time) error {
	var current string
	err := tx.QueryRow(ctx,
		`SELECT status FROM conversation_session WHERE session_uuid = $1 FOR UPDATE`, id.String(),
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get session status: %w", err)
	}

	sess := &models.Session{ID: id, Status: models.SessionStatus(current)}
	if err := session.Complete(sess, endedAt); err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE conversation_session SET status = $2, ended_at = $3 WHERE session_uuid = $1`,
		id.String(), string(sess.Status), *sess.EndedAt)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return nil
}

// --- Complaints ---

func (s *PostgresStore) FinalizeSession(ctx context.Context, c *models.Complaint, endedAt time.Time) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin finalize: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := completeSession(ctx, tx, c.SessionID, endedAt); err != nil {
		return err
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO complaint (session_uuid, raw_text, summary_text, category, severity,
		                        handling_type, handling_desc, is_confirmed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		c.SessionID.String(), c.RawText, c.SummaryText, string(c.Category), string(c.Severity),
		string(c.HandlingType), c.HandlingDesc, c.IsConfirmed, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert complaint: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit finalize: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetComplaintBySession(ctx context.Context, sessionID uuid.UUID) (*models.Complaint, error) {
	var c models.Complaint
	var rawID, category, severity, handle string
	err := s.db.QueryRow(ctx,
		`SELECT id, session_uuid, raw_text, summary_text, category, severity,
		        handling_type, handling_desc, is_confirmed, created_at
		 FROM complaint WHERE session_uuid = $1`, sessionID.String(),
	).Scan(&c.ID, &rawID, &c.RawText, &c.SummaryText, &category, &severity,
		&handle, &c.HandlingDesc, &c.IsConfirmed, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get complaint: %w", err)
	}
	if c.SessionID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parse session id: %w", err)
	}
	c.Category = models.Category(category)
	c.Severity = models.Severity(severity)
	c.HandlingType = models.HandlingType(handle)
	return &c, nil
}

func (s *PostgresStore) ListComplaintHandling(ctx context.Context, complaintID int64) ([]*models.ComplaintHandling, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, complaint_id, handler_name, handler_dept, status, note, updated_at
		 FROM complaint_handling WHERE complaint_id = $1 ORDER BY updated_at ASC, id ASC`, complaintID)
	if err != nil {
		return nil, fmt.Errorf("list complaint handling: %w", err)
	}
	defer rows.Close()

	handling := []*models.ComplaintHandling{}
	for rows.Next() {
		var h models.ComplaintHandling
		if err := rows.Scan(&h.ID, &h.ComplaintID, &h.HandlerName, &h.HandlerDept,
			&h.Status, &h.Note, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan complaint handling: %w", err)
		}
		handling = append(handling, &h)
	}
	return handling, rows.Err()
}

// --- Log entries ---

func (s *PostgresStore) AppendLog(ctx context.Context, e *models.LogEntry) error {
	var payload any
	if len(e.Payload) > 0 {
		payload = string(e.Payload)
	}
	err := s.db.QueryRow(ctx,
		`INSERT INTO log_entry (session_uuid, step, level, message, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		e.SessionID.String(), string(e.Step), string(e.Level), e.Message, payload, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("append log entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListLogs(ctx context.Context, sessionID *uuid.UUID) ([]*models.LogEntry, error) {
	query := `SELECT id, session_uuid, step, level, message, payload, created_at FROM log_entry`
	var args []any
	if sessionID != nil {
		query += ` WHERE session_uuid = $1`
		args = append(args, sessionID.String())
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list log entries: %w", err)
	}
	defer rows.Close()

	entries := []*models.LogEntry{}
	for rows.Next() {
		var (
			e                  models.LogEntry
			rawID, step, level string
			payload            []byte
		)
		if err := rows.Scan(&e.ID, &rawID, &step, &level, &e.Message, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		if e.SessionID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parse session id: %w", err)
		}
		e.Step = models.Step(step)
		e.Level = models.LogLevel(level)
		e.Payload = payload
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

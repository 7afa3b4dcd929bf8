// Package intake runs the complaint pipeline for one conversation session:
// start, transcribe, analyze, confirm and finalize. Every step is appended to
// the audit log.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/voicedesk/internal/audit"
	"github.com/kiranshivaraju/voicedesk/internal/cache"
	"github.com/kiranshivaraju/voicedesk/internal/classifier"
	"github.com/kiranshivaraju/voicedesk/internal/observability/metrics"
	"github.com/kiranshivaraju/voicedesk/internal/session"
	"github.com/kiranshivaraju/voicedesk/internal/store"
	"github.com/kiranshivaraju/voicedesk/internal/transcribe"
	"github.com/kiranshivaraju/voicedesk/pkg/models"
)

const (
	NextStepSaveAndNotify = "SAVE_AND_NOTIFY"
	NextStepRetry         = "RETRY"

	RedirectMain = "MAIN"

	sessionStatusTTL = time.Hour
)

// Transcriber turns uploaded audio into text and reports which provider answered.
type Transcriber interface {
	TranscribeResult(ctx context.Context, audio []byte, filename string) (transcribe.Result, error)
}

// AudioArchive stores the raw upload. An empty key means archival is off.
type AudioArchive interface {
	PutAudio(ctx context.Context, sessionID uuid.UUID, filename string, audio []byte) (string, error)
}

// FinalizeRequest is the citizen-confirmed analysis to persist. HandlingType
// and HandlingDesc are advisory; the stored plan is recomputed from
// Category and Severity.
type FinalizeRequest struct {
	RawText      string
	SummaryText  string
	Category     string
	Severity     string
	HandlingType string
	HandlingDesc string
	IsConfirmed  *bool
}

// ComplaintRecord is a saved complaint with its handling history, oldest first.
type ComplaintRecord struct {
	Complaint *models.Complaint
	Handling  []*models.ComplaintHandling
}

// FinalizeResult is returned once the complaint is saved.
type FinalizeResult struct {
	ComplaintID int64
	UserMessage string
	Redirect    string
}

// Service orchestrates the intake pipeline.
type Service struct {
	store       store.Store
	audit       *audit.Log
	cache       cache.Cache
	transcriber Transcriber
	archive     AudioArchive
	metrics     *metrics.IntakeMetrics
	now         func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithCache enables the session status cache.
func WithCache(c cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithArchive enables raw audio archival.
func WithArchive(a AudioArchive) Option {
	return func(s *Service) { s.archive = a }
}

// WithMetrics records pipeline counters.
func WithMetrics(m *metrics.IntakeMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the wall clock used for session and complaint timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new Service.
func NewService(st store.Store, log *audit.Log, tr Transcriber, opts ...Option) *Service {
	s := &Service{
		store:       st,
		audit:       log,
		transcriber: tr,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a new IN_PROGRESS session.
func (s *Service) Start(ctx context.Context, debugMode bool) (*models.Session, error) {
	sess := session.New(debugMode, s.now())
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	s.cacheStatus(ctx, sess.ID, sess.Status)

	if err := s.audit.Append(ctx, sess.ID, models.LevelInfo, "새로운 세션이 생성되었습니다.",
		audit.SessionPayload{DebugMode: debugMode}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	slog.InfoContext(ctx, "session started", "session_uuid", sess.ID, "debug_mode", debugMode)
	return sess, nil
}

// Transcribe converts uploaded audio to text. Provider outages are absorbed
// by the transcriber, so the only failures here are unknown sessions and storage.
func (s *Service) Transcribe(ctx context.Context, id uuid.UUID, audio []byte, filename string) (string, error) {
	if _, err := s.ensureSession(ctx, id); err != nil {
		return "", err
	}

	var archiveKey string
	if s.archive != nil {
		key, err := s.archive.PutAudio(ctx, id, filename, audio)
		if err != nil {
			slog.WarnContext(ctx, "audio archive failed", "session_uuid", id, "error", err)
		}
		archiveKey = key
	}

	res, err := s.transcriber.TranscribeResult(ctx, audio, filename)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	s.metrics.ObserveTranscription(res.Provider, res.Fallback)

	level := models.LevelInfo
	if res.Fallback {
		level = models.LevelWarn
	}
	if err := s.audit.Append(ctx, id, level, "음성 인식이 완료되었습니다.", audit.STTPayload{
		RawText:    res.Text,
		Size:       len(audio),
		Filename:   filename,
		Provider:   res.Provider,
		Fallback:   res.Fallback,
		ArchiveKey: archiveKey,
	}); err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return res.Text, nil
}

// Analyze classifies the transcript. Blank input is rejected without logging.
func (s *Service) Analyze(ctx context.Context, id uuid.UUID, rawText string) (models.AnalysisResult, error) {
	if _, err := s.ensureSession(ctx, id); err != nil {
		return models.AnalysisResult{}, err
	}
	if strings.TrimSpace(rawText) == "" {
		return models.AnalysisResult{}, ErrInvalidText
	}

	result := classifier.Analyze(rawText)
	s.metrics.ObserveAnalysis(string(result.Category), string(result.Severity))

	if err := s.audit.Append(ctx, id, models.LevelInfo, "요약 및 분류가 완료되었습니다.",
		audit.AnalyzePayload{AnalysisResult: result}); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return result, nil
}

// Confirm records the citizen's answer and returns the next step.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID, confirmed bool) (string, error) {
	if _, err := s.ensureSession(ctx, id); err != nil {
		return "", err
	}

	next := NextStepRetry
	if confirmed {
		next = NextStepSaveAndNotify
	}
	s.metrics.ObserveConfirmation(next)

	if err := s.audit.Append(ctx, id, models.LevelInfo, "사용자 확인 결과",
		audit.ConfirmPayload{IsConfirmed: confirmed, NextStep: next}); err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return next, nil
}

// Finalize persists the complaint and completes the session in one
// transaction. A session accepts exactly one complaint.
func (s *Service) Finalize(ctx context.Context, id uuid.UUID, req FinalizeRequest) (*FinalizeResult, error) {
	sess, err := s.ensureSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status.Terminal() {
		return nil, ErrAlreadyFinalized
	}

	complaint, err := s.buildComplaint(ctx, id, req)
	if err != nil {
		return nil, err
	}

	err = s.store.FinalizeSession(ctx, complaint, s.now())
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrSessionNotFound
	case errors.Is(err, session.ErrInvalidTransition), errors.Is(err, store.ErrDuplicateKey):
		s.cacheStatus(ctx, id, models.SessionCompleted)
		return nil, ErrAlreadyFinalized
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	s.cacheStatus(ctx, id, models.SessionCompleted)
	s.metrics.ObserveComplaint(string(complaint.Category), string(complaint.Severity), string(complaint.HandlingType))

	// The complaint is committed at this point; failing the request would
	// leave the client unable to retry, so a lost DB_SAVE entry is only logged.
	if err := s.audit.Append(ctx, id, models.LevelInfo, "민원이 저장되었습니다.", audit.PersistPayload{
		ComplaintID: complaint.ID,
		Category:    complaint.Category,
		Severity:    complaint.Severity,
	}); err != nil {
		slog.ErrorContext(ctx, "audit append after finalize failed",
			"session_uuid", id,
			"complaint_id", complaint.ID,
			"error", err,
		)
	}

	slog.InfoContext(ctx, "complaint saved",
		"session_uuid", id,
		"complaint_id", complaint.ID,
		"category", complaint.Category,
		"severity", complaint.Severity,
	)

	return &FinalizeResult{
		ComplaintID: complaint.ID,
		UserMessage: classifier.FormatUserMessage(models.AnalysisResult{
			SummaryText:  complaint.SummaryText,
			Category:     complaint.Category,
			Severity:     complaint.Severity,
			HandlingType: complaint.HandlingType,
			HandlingDesc: complaint.HandlingDesc,
		}),
		Redirect: RedirectMain,
	}, nil
}

// GetComplaint returns the complaint filed by a session and its handling
// records. A session that has not been finalized has no complaint.
func (s *Service) GetComplaint(ctx context.Context, id uuid.UUID) (*ComplaintRecord, error) {
	if _, err := s.ensureSession(ctx, id); err != nil {
		return nil, err
	}

	c, err := s.store.GetComplaintBySession(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrComplaintNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	handling, err := s.store.ListComplaintHandling(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return &ComplaintRecord{Complaint: c, Handling: handling}, nil
}

// ListLogs returns audit entries in created_at order, optionally for one session.
func (s *Service) ListLogs(ctx context.Context, id *uuid.UUID) ([]*models.LogEntry, error) {
	entries, err := s.audit.Query(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return entries, nil
}

func (s *Service) buildComplaint(ctx context.Context, id uuid.UUID, req FinalizeRequest) (*models.Complaint, error) {
	if strings.TrimSpace(req.RawText) == "" {
		return nil, fmt.Errorf("%w: raw_text is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.SummaryText) == "" {
		return nil, fmt.Errorf("%w: summary_text is required", ErrInvalidRequest)
	}
	category, err := models.ParseCategory(req.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	severity, err := models.ParseSeverity(req.Severity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.HandlingType != "" {
		if _, err := models.ParseHandlingType(req.HandlingType); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}

	handling, desc := classifier.DecideHandling(category, severity)
	if req.HandlingType != "" && models.HandlingType(req.HandlingType) != handling {
		slog.WarnContext(ctx, "client handling type overridden",
			"session_uuid", id,
			"requested", req.HandlingType,
			"decided", handling,
		)
	}

	confirmed := true
	if req.IsConfirmed != nil {
		confirmed = *req.IsConfirmed
	}

	return &models.Complaint{
		SessionID:    id,
		RawText:      req.RawText,
		SummaryText:  req.SummaryText,
		Category:     category,
		Severity:     severity,
		HandlingType: handling,
		HandlingDesc: desc,
		IsConfirmed:  confirmed,
		CreatedAt:    s.now().UTC(),
	}, nil
}

// ensureSession resolves a session, preferring the cached status. Cache
// failures fall through to the database.
func (s *Service) ensureSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	if s.cache != nil {
		status, ok, err := s.cache.GetSessionStatus(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "session cache read failed", "session_uuid", id, "error", err)
		} else if ok {
			return &models.Session{ID: id, Status: status}, nil
		}
	}

	sess, err := s.store.GetSession(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	s.cacheStatus(ctx, id, sess.Status)
	return sess, nil
}

func (s *Service) cacheStatus(ctx context.Context, id uuid.UUID, status models.SessionStatus) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetSessionStatus(ctx, id, status, sessionStatusTTL); err != nil {
		slog.WarnContext(ctx, "session cache write failed", "session_uuid", id, "error", err)
	}
}

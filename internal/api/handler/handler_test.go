package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/voicedesk/internal/intake"
	"github.com/kiranshivaraju/voicedesk/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock Intake ---

type mockIntake struct {
	startFn      func(debugMode bool) (*models.Session, error)
	transcribeFn func(id uuid.UUID, audio []byte, filename string) (string, error)
	analyzeFn    func(id uuid.UUID, rawText string) (models.AnalysisResult, error)
	confirmFn    func(id uuid.UUID, confirmed bool) (string, error)
	finalizeFn   func(id uuid.UUID, req intake.FinalizeRequest) (*intake.FinalizeResult, error)
	listLogsFn   func(id *uuid.UUID) ([]*models.LogEntry, error)
	complaintFn  func(id uuid.UUID) (*intake.ComplaintRecord, error)
}

func (m *mockIntake) Start(_ context.Context, debugMode bool) (*models.Session, error) {
	return m.startFn(debugMode)
}

func (m *mockIntake) Transcribe(_ context.Context, id uuid.UUID, audio []byte, filename string) (string, error) {
	return m.transcribeFn(id, audio, filename)
}

func (m *mockIntake) Analyze(_ context.Context, id uuid.UUID, rawText string) (models.AnalysisResult, error) {
	return m.analyzeFn(id, rawText)
}

func (m *mockIntake) Confirm(_ context.Context, id uuid.UUID, confirmed bool) (string, error) {
	return m.confirmFn(id, confirmed)
}

func (m *mockIntake) Finalize(_ context.Context, id uuid.UUID, req intake.FinalizeRequest) (*intake.FinalizeResult, error) {
	return m.finalizeFn(id, req)
}

func (m *mockIntake) ListLogs(_ context.Context, id *uuid.UUID) ([]*models.LogEntry, error) {
	return m.listLogsFn(id)
}

func (m *mockIntake) GetComplaint(_ context.Context, id uuid.UUID) (*intake.ComplaintRecord, error) {
	return m.complaintFn(id)
}

type mockPinger struct{ err error }

func (m mockPinger) Ping(context.Context) error { return m.err }

// --- helpers ---

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) envelope {
	t.Helper()
	assert.Equal(t, status, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "null", string(env.Data))
	require.NotNil(t, env.Error)
	assert.Equal(t, code, env.Error.Code)
	return env
}

func jsonReq(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

func withSessionID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("sessionID", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func audioReq(t *testing.T, id, field, filename string, audio []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(audio)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/"+id+"/stt", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return withSessionID(r, id)
}

// --- start ---

func TestStart_DebugMode(t *testing.T) {
	id := uuid.New()
	var gotDebug bool
	svc := &mockIntake{startFn: func(debugMode bool) (*models.Session, error) {
		gotDebug = debugMode
		return &models.Session{ID: id, DebugMode: debugMode, Status: models.SessionInProgress}, nil
	}}

	rec := httptest.NewRecorder()
	NewStartHandler(svc)(rec, jsonReq(t, http.MethodPost, "/api/v1/conversations/start", map[string]any{"debug_mode": true}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotDebug)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)

	var data map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, id.String(), data["session_uuid"])
	assert.Equal(t, "IN_PROGRESS", data["status"])
}

func TestStart_EmptyBodyDefaults(t *testing.T) {
	gotDebug := true
	svc := &mockIntake{startFn: func(debugMode bool) (*models.Session, error) {
		gotDebug = debugMode
		return &models.Session{ID: uuid.New(), Status: models.SessionInProgress}, nil
	}}

	rec := httptest.NewRecorder()
	NewStartHandler(svc)(rec, httptest.NewRequest(http.MethodPost, "/api/v1/conversations/start", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, gotDebug)
}

func TestStart_InvalidJSON(t *testing.T) {
	svc := &mockIntake{}
	rec := httptest.NewRecorder()
	NewStartHandler(svc)(rec, jsonReq(t, http.MethodPost, "/api/v1/conversations/start", "{bad"))

	assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_REQUEST")
}

func TestStart_StorageFailure(t *testing.T) {
	svc := &mockIntake{startFn: func(bool) (*models.Session, error) {
		return nil, fmt.Errorf("%w: connection refused", intake.ErrStorage)
	}}

	rec := httptest.NewRecorder()
	NewStartHandler(svc)(rec, jsonReq(t, http.MethodPost, "/api/v1/conversations/start", nil))

	env := assertErrorCode(t, rec, http.StatusInternalServerError, "STORAGE_FAILURE")
	assert.NotContains(t, env.Error.Message, "connection refused")
}

// --- stt ---

func TestSTT_Success(t *testing.T) {
	id := uuid.New()
	var gotAudio []byte
	var gotName string
	svc := &mockIntake{transcribeFn: func(sid uuid.UUID, audio []byte, filename string) (string, error) {
		assert.Equal(t, id, sid)
		gotAudio = audio
		gotName = filename
		return "가로등이 고장났어요", nil
	}}

	rec := httptest.NewRecorder()
	NewSTTHandler(svc, 1<<20)(rec, audioReq(t, id.String(), "audio_file", "memo.wav", []byte("RIFFdata")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []byte("RIFFdata"), gotAudio)
	assert.Equal(t, "memo.wav", gotName)

	env := decodeEnvelope(t, rec)
	var data map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "가로등이 고장났어요", data["raw_text"])
}

func TestSTT_MissingFile(t *testing.T) {
	svc := &mockIntake{}
	rec := httptest.NewRecorder()
	NewSTTHandler(svc, 1<<20)(rec, audioReq(t, uuid.NewString(), "other", "memo.wav", []byte("x")))

	assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_REQUEST")
}

func TestSTT_TooLarge(t *testing.T) {
	svc := &mockIntake{}
	rec := httptest.NewRecorder()
	NewSTTHandler(svc, 16)(rec, audioReq(t, uuid.NewString(), "audio_file", "memo.wav", bytes.Repeat([]byte("a"), 32)))

	assertErrorCode(t, rec, http.StatusRequestEntityTooLarge, "INVALID_REQUEST")
}

func TestSTT_InvalidSessionID(t *testing.T) {
	svc := &mockIntake{}
	rec := httptest.NewRecorder()
	NewSTTHandler(svc, 1<<20)(rec, audioReq(t, "not-a-uuid", "audio_file", "memo.wav", []byte("x")))

	assertErrorCode(t, rec, http.StatusNotFound, "NOT_FOUND")
}

func TestSTT_UnknownSession(t *testing.T) {
	svc := &mockIntake{transcribeFn: func(uuid.UUID, []byte, string) (string, error) {
		return "", intake.ErrSessionNotFound
	}}
	rec := httptest.NewRecorder()
	NewSTTHandler(svc, 1<<20)(rec, audioReq(t, uuid.NewString(), "audio_file", "memo.wav", []byte("x")))

	assertErrorCode(t, rec, http.StatusNotFound, "NOT_FOUND")
}

// --- analyze ---

func TestAnalyze_Success(t *testing.T) {
	id := uuid.New()
	svc := &mockIntake{analyzeFn: func(sid uuid.UUID, raw string) (models.AnalysisResult, error) {
		assert.Equal(t, "가로등이 고장나서 너무 어두워요", raw)
		return models.AnalysisResult{
			SummaryText:  "가로등이 고장나서 너무 어두워요",
			Category:     models.CategoryFacility,
			Severity:     models.SeverityNormal,
			HandlingType: models.HandlingOnSiteVisit,
			HandlingDesc: "시설 담당자가 현장을 확인하고 필요한 조치를 진행합니다.",
		}, nil
	}}

	r := withSessionID(jsonReq(t, http.MethodPost, "/", map[string]string{"raw_text": "가로등이 고장나서 너무 어두워요"}), id.String())
	rec := httptest.NewRecorder()
	NewAnalyzeHandler(svc)(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	var data models.AnalysisResult
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, models.CategoryFacility, data.Category)
	assert.Equal(t, models.SeverityNormal, data.Severity)
	assert.Equal(t, models.HandlingOnSiteVisit, data.HandlingType)
}

func TestAnalyze_EmptyText(t *testing.T) {
	svc := &mockIntake{analyzeFn: func(uuid.UUID, string) (models.AnalysisResult, error) {
		return models.AnalysisResult{}, intake.ErrInvalidText
	}}

	r := withSessionID(jsonReq(t, http.MethodPost, "/", map[string]string{"raw_text": "   "}), uuid.NewString())
	rec := httptest.NewRecorder()
	NewAnalyzeHandler(svc)(rec, r)

	env := assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_TEXT")
	assert.Equal(t, "분석할 텍스트가 없습니다.", env.Error.Message)
}

func TestAnalyze_InvalidJSON(t *testing.T) {
	r := withSessionID(jsonReq(t, http.MethodPost, "/", "not json"), uuid.NewString())
	rec := httptest.NewRecorder()
	NewAnalyzeHandler(&mockIntake{})(rec, r)

	assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_REQUEST")
}

// --- confirm ---

func TestConfirm(t *testing.T) {
	tests := []struct {
		confirmed bool
		next      string
	}{
		{true, intake.NextStepSaveAndNotify},
		{false, intake.NextStepRetry},
	}
	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			svc := &mockIntake{confirmFn: func(_ uuid.UUID, confirmed bool) (string, error) {
				assert.Equal(t, tt.confirmed, confirmed)
				return tt.next, nil
			}}

			r := withSessionID(jsonReq(t, http.MethodPost, "/", map[string]bool{"is_confirmed": tt.confirmed}), uuid.NewString())
			rec := httptest.NewRecorder()
			NewConfirmHandler(svc)(rec, r)

			assert.Equal(t, http.StatusOK, rec.Code)
			env := decodeEnvelope(t, rec)
			var data map[string]string
			require.NoError(t, json.Unmarshal(env.Data, &data))
			assert.Equal(t, tt.next, data["next_step"])
		})
	}
}

func TestConfirm_MissingField(t *testing.T) {
	r := withSessionID(jsonReq(t, http.MethodPost, "/", map[string]any{}), uuid.NewString())
	rec := httptest.NewRecorder()
	NewConfirmHandler(&mockIntake{})(rec, r)

	assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_REQUEST")
}

// --- finalize ---

func TestFinalize_Success(t *testing.T) {
	id := uuid.New()
	var got intake.FinalizeRequest
	svc := &mockIntake{finalizeFn: func(sid uuid.UUID, req intake.FinalizeRequest) (*intake.FinalizeResult, error) {
		assert.Equal(t, id, sid)
		got = req
		return &intake.FinalizeResult{ComplaintID: 7, UserMessage: "접수되었습니다.", Redirect: intake.RedirectMain}, nil
	}}

	body := map[string]any{
		"raw_text":      "도로에 큰 구멍이 생겼어요",
		"summary_text":  "도로에 큰 구멍이 생겼어요",
		"category":      "FACILITY",
		"severity":      "NORMAL",
		"handling_type": "ON_SITE_VISIT",
	}
	r := withSessionID(jsonReq(t, http.MethodPost, "/", body), id.String())
	rec := httptest.NewRecorder()
	NewFinalizeHandler(svc)(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "FACILITY", got.Category)
	assert.Equal(t, "NORMAL", got.Severity)
	assert.Nil(t, got.IsConfirmed)

	env := decodeEnvelope(t, rec)
	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "MAIN", data["redirect"])
	assert.Equal(t, "접수되었습니다.", data["user_message"])
	assert.Equal(t, float64(7), data["complaint_id"])
}

func TestFinalize_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid request", fmt.Errorf("%w: unknown category %q", intake.ErrInvalidRequest, "X"), http.StatusBadRequest, "INVALID_REQUEST"},
		{"not found", intake.ErrSessionNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"already finalized", intake.ErrAlreadyFinalized, http.StatusConflict, "ALREADY_FINALIZED"},
		{"storage", fmt.Errorf("%w: tx failed", intake.ErrStorage), http.StatusInternalServerError, "STORAGE_FAILURE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockIntake{finalizeFn: func(uuid.UUID, intake.FinalizeRequest) (*intake.FinalizeResult, error) {
				return nil, tt.err
			}}

			r := withSessionID(jsonReq(t, http.MethodPost, "/", map[string]any{"raw_text": "x"}), uuid.NewString())
			rec := httptest.NewRecorder()
			NewFinalizeHandler(svc)(rec, r)

			assertErrorCode(t, rec, tt.status, tt.code)
		})
	}
}

// --- complaint ---

func TestGetComplaint_Success(t *testing.T) {
	id := uuid.New()
	dept := "도로관리과"
	svc := &mockIntake{complaintFn: func(sid uuid.UUID) (*intake.ComplaintRecord, error) {
		assert.Equal(t, id, sid)
		return &intake.ComplaintRecord{
			Complaint: &models.Complaint{
				ID:           3,
				SessionID:    id,
				SummaryText:  "도로에 큰 구멍이 생겼어요",
				Category:     models.CategoryFacility,
				Severity:     models.SeverityNormal,
				HandlingType: models.HandlingOnSiteVisit,
				IsConfirmed:  true,
			},
			Handling: []*models.ComplaintHandling{{ID: 1, ComplaintID: 3, HandlerDept: &dept, Status: "ASSIGNED"}},
		}, nil
	}}

	r := withSessionID(httptest.NewRequest(http.MethodGet, "/", nil), id.String())
	rec := httptest.NewRecorder()
	NewGetComplaintHandler(svc)(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	var data struct {
		Complaint models.Complaint           `json:"complaint"`
		Handling  []models.ComplaintHandling `json:"handling"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, int64(3), data.Complaint.ID)
	assert.Equal(t, models.CategoryFacility, data.Complaint.Category)
	require.Len(t, data.Handling, 1)
	assert.Equal(t, "ASSIGNED", data.Handling[0].Status)
}

func TestGetComplaint_EmptyHandlingIsArray(t *testing.T) {
	svc := &mockIntake{complaintFn: func(uuid.UUID) (*intake.ComplaintRecord, error) {
		return &intake.ComplaintRecord{Complaint: &models.Complaint{ID: 1}}, nil
	}}

	r := withSessionID(httptest.NewRequest(http.MethodGet, "/", nil), uuid.NewString())
	rec := httptest.NewRecorder()
	NewGetComplaintHandler(svc)(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"handling":[]`)
}

func TestGetComplaint_NotFinalized(t *testing.T) {
	svc := &mockIntake{complaintFn: func(uuid.UUID) (*intake.ComplaintRecord, error) {
		return nil, intake.ErrComplaintNotFound
	}}

	r := withSessionID(httptest.NewRequest(http.MethodGet, "/", nil), uuid.NewString())
	rec := httptest.NewRecorder()
	NewGetComplaintHandler(svc)(rec, r)

	env := assertErrorCode(t, rec, http.StatusNotFound, "NOT_FOUND")
	assert.Equal(t, "Complaint not found", env.Error.Message)
}

// --- logs ---

func TestListLogs_Filtered(t *testing.T) {
	id := uuid.New()
	svc := &mockIntake{listLogsFn: func(filter *uuid.UUID) ([]*models.LogEntry, error) {
		require.NotNil(t, filter)
		assert.Equal(t, id, *filter)
		return []*models.LogEntry{{
			SessionID: id,
			Step:      models.StepSession,
			Level:     models.LevelInfo,
			Message:   "새로운 세션이 생성되었습니다.",
			Payload:   json.RawMessage(`{"debug_mode":false}`),
			CreatedAt: time.Date(2026, 3, 7, 9, 30, 0, 0, time.UTC),
		}}, nil
	}}

	rec := httptest.NewRecorder()
	NewListLogsHandler(svc)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/logs?session_uuid="+id.String(), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	var data []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data, 1)
	assert.Equal(t, "SESSION", data[0]["step"])
	assert.Equal(t, map[string]any{"debug_mode": false}, data[0]["payload"])
}

func TestListLogs_AllSessions(t *testing.T) {
	svc := &mockIntake{listLogsFn: func(filter *uuid.UUID) ([]*models.LogEntry, error) {
		assert.Nil(t, filter)
		return nil, nil
	}}

	rec := httptest.NewRecorder()
	NewListLogsHandler(svc)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "[]", string(env.Data))
}

func TestListLogs_UnparsableFilterMatchesNothing(t *testing.T) {
	svc := &mockIntake{listLogsFn: func(*uuid.UUID) ([]*models.LogEntry, error) {
		t.Fatal("ListLogs should not be called")
		return nil, nil
	}}

	rec := httptest.NewRecorder()
	NewListLogsHandler(svc)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/logs?session_uuid=abc", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", string(decodeEnvelope(t, rec).Data))
}

func TestListLogs_StorageFailure(t *testing.T) {
	svc := &mockIntake{listLogsFn: func(*uuid.UUID) ([]*models.LogEntry, error) {
		return nil, fmt.Errorf("%w: timeout", intake.ErrStorage)
	}}

	rec := httptest.NewRecorder()
	NewListLogsHandler(svc)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil))

	assertErrorCode(t, rec, http.StatusInternalServerError, "STORAGE_FAILURE")
}

// --- health ---

func TestHealth(t *testing.T) {
	tests := []struct {
		name    string
		db      error
		cache   error
		status  int
		message string
	}{
		{"healthy", nil, nil, http.StatusOK, ""},
		{"db down", errors.New("down"), nil, http.StatusServiceUnavailable, "database: error, cache: ok"},
		{"cache down", nil, errors.New("down"), http.StatusServiceUnavailable, "database: ok, cache: error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHealthHandler(mockPinger{tt.db}, mockPinger{tt.cache})(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.True(t, strings.Contains(rec.Body.String(), `"status":"ok"`))
				return
			}
			env := assertErrorCode(t, rec, tt.status, "DEGRADED")
			assert.Equal(t, tt.message, env.Error.Message)
		})
	}
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lezatlabs/scheduling-backend/errors"
	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
	"github.com/lezatlabs/scheduling-backend/internal/usecase/enrichment"
	"github.com/lezatlabs/scheduling-backend/pkg/config"
	"github.com/lezatlabs/scheduling-backend/pkg/validator"
)

// fakeService implements enrichment.Service for handler tests.
type fakeService struct {
	webhookResult  *enrichment.WebhookResult
	webhookErr     error
	records        []entities.TranscriptionRecord
	record         *entities.TranscriptionRecord
	recordErr      error
	backfillResult *enrichment.BackfillResult
	backfillErr    error

	lastInput enrichment.WebhookInput
	lastLimit int
}

func (f *fakeService) HandleWebhook(_ context.Context, in enrichment.WebhookInput) (*enrichment.WebhookResult, error) {
	f.lastInput = in
	return f.webhookResult, f.webhookErr
}

func (f *fakeService) ListReceived(_ context.Context, limit int) ([]entities.TranscriptionRecord, error) {
	f.lastLimit = limit
	return f.records, nil
}

func (f *fakeService) GetRecord(_ context.Context, _ uuid.UUID) (*entities.TranscriptionRecord, error) {
	return f.record, f.recordErr
}

func (f *fakeService) GetLatestByMeetingID(_ context.Context, _ string) (*entities.TranscriptionRecord, error) {
	return f.record, f.recordErr
}

func (f *fakeService) BackfillMeeting(_ context.Context, _ string) (*enrichment.BackfillResult, error) {
	return f.backfillResult, f.backfillErr
}

func newTestServer(svc enrichment.Service) *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	cfg := &config.Config{}
	cfg.Server.Environment = "test"
	NewRouter(cfg, NewTranscription(svc, nil)).Setup(e)
	return e
}

func TestWebhook_Accepted(t *testing.T) {
	svc := &fakeService{webhookResult: &enrichment.WebhookResult{
		RecordID:         uuid.New(),
		Provider:         entities.ProviderFireflies,
		MeetingID:        "m1",
		EnrichmentStatus: entities.StatusDispatched,
	}}
	e := newTestServer(svc)

	body := `{"event": "transcription_completed", "meetingId": "m1"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/transcriptions/webhooks/fireflies/u1", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("x-hub-signature", "sha256=abc")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastInput.Provider != entities.ProviderFireflies || svc.lastInput.ClientReferenceID != "u1" {
		t.Errorf("unexpected input: %+v", svc.lastInput)
	}
	if svc.lastInput.Signature != "sha256=abc" {
		t.Errorf("expected signature header forwarded, got %q", svc.lastInput.Signature)
	}
	if string(svc.lastInput.Body) != body {
		t.Error("expected raw body forwarded unmodified")
	}
}

func TestWebhook_UnknownTenantReturns404(t *testing.T) {
	svc := &fakeService{webhookErr: errors.ErrUnknownTenant("ghost")}
	e := newTestServer(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/transcriptions/webhooks/fireflies/ghost", strings.NewReader(`{"meetingId": "m1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if int(body["code"].(float64)) != int(errors.ErrorCode_UNKNOWN_TENANT) {
		t.Errorf("unexpected error code: %v", body["code"])
	}
}

func TestWebhook_MissingMeetingIDReturns400(t *testing.T) {
	svc := &fakeService{webhookErr: errors.ErrMissingMeetingID()}
	e := newTestServer(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/transcriptions/webhooks/fireflies/u1", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWebhook_InvalidSignatureReturns401(t *testing.T) {
	svc := &fakeService{webhookErr: errors.ErrInvalidSignature()}
	e := newTestServer(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/transcriptions/webhooks/fireflies/u1", strings.NewReader(`{"meetingId": "m1"}`))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestListReceived_RejectsOutOfRangeLimit(t *testing.T) {
	e := newTestServer(&fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/v1/transcriptions/received?limit=5000", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for limit above cap, got %d", rec.Code)
	}
}

func TestListReceived_PassesLimitThrough(t *testing.T) {
	svc := &fakeService{}
	e := newTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/transcriptions/received?limit=10", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastLimit != 10 {
		t.Errorf("expected limit 10 forwarded, got %d", svc.lastLimit)
	}
}

func TestGetByID_ProjectsTranscriptContent(t *testing.T) {
	text := "Alice: I'll send the report."
	svc := &fakeService{record: &entities.TranscriptionRecord{
		ID:               uuid.New(),
		Provider:         entities.ProviderFireflies,
		MeetingID:        "m1",
		EnrichmentStatus: entities.StatusTranscriptReady,
		TranscriptText:   &text,
		Sentences: []entities.TranscriptSentence{
			{Index: 0, Speaker: "Alice", Text: "I'll send the report."},
		},
		ParticipantEmails: []string{"alice@example.com"},
	}}
	e := newTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/transcriptions/received/"+svc.record.ID.String(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data struct {
			TranscriptText      *string                       `json:"transcript_text"`
			TranscriptSentences []entities.TranscriptSentence `json:"transcript_sentences"`
			ParticipantEmails   []string                      `json:"participant_emails"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Data.TranscriptText == nil || *body.Data.TranscriptText != text {
		t.Errorf("expected transcript text projected, got %v", body.Data.TranscriptText)
	}
	if len(body.Data.TranscriptSentences) != 1 || body.Data.TranscriptSentences[0].Speaker != "Alice" {
		t.Errorf("expected transcript sentences projected, got %+v", body.Data.TranscriptSentences)
	}
	if len(body.Data.ParticipantEmails) != 1 {
		t.Errorf("expected participant emails projected, got %+v", body.Data.ParticipantEmails)
	}
}

func TestGetByID_RejectsMalformedUUID(t *testing.T) {
	e := newTestServer(&fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/v1/transcriptions/received/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetByMeetingID_NotFound(t *testing.T) {
	svc := &fakeService{recordErr: errors.ErrRecordNotFound("missing")}
	e := newTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/transcriptions/received/by-meeting/missing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBackfill_ConflictWhileRunning(t *testing.T) {
	svc := &fakeService{backfillErr: errors.ErrBackfillInProgress("m1")}
	e := newTestServer(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/transcriptions/backfill/m1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestBackfill_Success(t *testing.T) {
	svc := &fakeService{backfillResult: &enrichment.BackfillResult{
		MeetingID:        "m1",
		UpdatedCount:     2,
		EnrichmentStatus: entities.StatusDispatched,
		TasksCreated:     1,
	}}
	e := newTestServer(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/transcriptions/backfill/m1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

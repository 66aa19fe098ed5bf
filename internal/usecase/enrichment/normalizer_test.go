package enrichment

import (
	"errors"
	"reflect"
	"testing"

	apperrors "github.com/lezatlabs/scheduling-backend/errors"
	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
)

func TestNormalizeEvent_Fireflies(t *testing.T) {
	payload := []byte(`{
		"event": "transcription_completed",
		"meetingId": "m1",
		"meeting": {"url": "https://meet.google.com/abc-defg-hij"}
	}`)

	event, err := NormalizeEvent(entities.ProviderFireflies, "u1", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.MeetingID != "m1" {
		t.Errorf("expected meeting id m1, got %q", event.MeetingID)
	}
	if event.ClientReferenceID != "u1" {
		t.Errorf("expected client reference u1, got %q", event.ClientReferenceID)
	}
	if event.Platform != entities.PlatformGoogleMeet {
		t.Errorf("expected google_meet inferred from url, got %q", event.Platform)
	}
	if !event.IsCompletionEvent() {
		t.Error("expected transcription_completed to qualify as completion event")
	}
}

func TestNormalizeEvent_MeetingIDPathPriority(t *testing.T) {
	payload := []byte(`{"meeting": {"id": "nested"}, "meeting_id": "flat"}`)
	event, err := NormalizeEvent(entities.ProviderFireflies, "u1", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.MeetingID != "nested" {
		t.Errorf("expected nested meeting.id to win, got %q", event.MeetingID)
	}
}

func TestNormalizeEvent_ReadAISessionID(t *testing.T) {
	payload := []byte(`{
		"trigger": "meeting_end",
		"session_id": "s-42",
		"participants": [{"email": "Bob@Example.com"}, "carol@example.com", "not-an-email"]
	}`)
	event, err := NormalizeEvent(entities.ProviderReadAI, "u1", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.MeetingID != "s-42" {
		t.Errorf("expected session_id fallback, got %q", event.MeetingID)
	}
	if event.EventType != "meeting_end" {
		t.Errorf("expected trigger to map to event type, got %q", event.EventType)
	}
	want := []string{"bob@example.com", "carol@example.com"}
	if !reflect.DeepEqual(event.ParticipantEmails, want) {
		t.Errorf("expected emails %v, got %v", want, event.ParticipantEmails)
	}
}

func TestNormalizeEvent_MissingMeetingID(t *testing.T) {
	_, err := NormalizeEvent(entities.ProviderFireflies, "u1", []byte(`{"event": "transcription_completed"}`))
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != apperrors.ErrorCode_MISSING_MEETING_ID {
		t.Errorf("expected MISSING_MEETING_ID, got %v", appErr.Code)
	}
}

func TestNormalizeEvent_InvalidJSON(t *testing.T) {
	_, err := NormalizeEvent(entities.ProviderFireflies, "u1", []byte(`not json`))
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != apperrors.ErrorCode_INVALID_PAYLOAD {
		t.Errorf("expected INVALID_PAYLOAD, got %v", appErr.Code)
	}
}

func TestNormalizeEvent_InlineTranscriptText(t *testing.T) {
	payload := []byte(`{
		"session_id": "s-1",
		"transcript": {"text": "Alice: let's ship it"}
	}`)
	event, err := NormalizeEvent(entities.ProviderReadAI, "u1", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.TranscriptText != "Alice: let's ship it" {
		t.Errorf("expected inline transcript text, got %q", event.TranscriptText)
	}
}

func TestExtractTranscriptText_SentenceList(t *testing.T) {
	payload := map[string]interface{}{
		"sentences": []interface{}{
			map[string]interface{}{"text": "first"},
			map[string]interface{}{"text": "second"},
			map[string]interface{}{"text": ""},
		},
	}
	if got := extractTranscriptText(payload); got != "first\nsecond" {
		t.Errorf("expected joined sentence text, got %q", got)
	}
}

func TestNormalizeEvent_NonQualifyingEvent(t *testing.T) {
	payload := []byte(`{"event": "meeting_started", "meetingId": "m1"}`)
	event, err := NormalizeEvent(entities.ProviderFireflies, "u1", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.IsCompletionEvent() {
		t.Error("expected meeting_started not to qualify as completion event")
	}
}

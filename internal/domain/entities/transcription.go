package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Provider identifies the recording tool that pushed the webhook.
type Provider string

const (
	ProviderFireflies Provider = "fireflies"
	ProviderReadAI    Provider = "read_ai"
)

// IsValid reports whether the provider is one we accept webhooks from.
func (p Provider) IsValid() bool {
	return p == ProviderFireflies || p == ProviderReadAI
}

// MeetingPlatform is the conferencing platform a meeting ran on,
// derived from the webhook payload.
type MeetingPlatform string

const (
	PlatformGoogleMeet MeetingPlatform = "google_meet"
	PlatformOther      MeetingPlatform = "other"
	PlatformUnknown    MeetingPlatform = "unknown"
)

// EnrichmentStatus tracks a record through the pipeline. Progression is
// monotonic; failed and failed_partial are terminal but retriable via
// backfill.
type EnrichmentStatus string

const (
	StatusReceived           EnrichmentStatus = "received"
	StatusFetchingTranscript EnrichmentStatus = "fetching_transcript"
	StatusTranscriptReady    EnrichmentStatus = "transcript_ready"
	StatusExtractingTasks    EnrichmentStatus = "extracting_tasks"
	StatusDispatched         EnrichmentStatus = "dispatched"
	StatusFailedPartial      EnrichmentStatus = "failed_partial"
	StatusFailed             EnrichmentStatus = "failed"
)

// MeetingEvent is the canonical, immutable form of a webhook delivery
// after normalization. TranscriptText and ParticipantEmails carry
// whatever the payload itself contained; providers that deliver thin
// notifications leave them empty and the fetch step fills them in.
type MeetingEvent struct {
	Provider          Provider
	MeetingID         string
	Platform          MeetingPlatform
	MeetingURL        string
	EventType         string
	RawPayload        []byte
	ClientReferenceID string
	TranscriptText    string
	ParticipantEmails []string
	ReceivedAt        time.Time
}

// IsCompletionEvent reports whether the event qualifies for transcript
// fetch. For Fireflies only "transcription_completed" advances the
// pipeline; other event types are stored and stop at received.
func (e MeetingEvent) IsCompletionEvent() bool {
	switch e.Provider {
	case ProviderFireflies:
		return e.EventType == "transcription_completed"
	case ProviderReadAI:
		return e.EventType == "meeting_end" || e.EventType == "transcription_completed"
	}
	return false
}

// TranscriptSentence is a single speaker turn in a transcript.
type TranscriptSentence struct {
	Index     int     `json:"index"`
	Speaker   string  `json:"speaker"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
}

// TranscriptionRecord is the persisted state for one accepted webhook
// delivery. One row per delivery; backfill mutates rows in place by
// meeting id instead of inserting.
type TranscriptionRecord struct {
	ID                uuid.UUID            `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Provider          Provider             `json:"provider" gorm:"type:varchar(32);not null;index"`
	MeetingID         string               `json:"meeting_id" gorm:"type:varchar(255);not null;index:idx_transcriptions_meeting,priority:1"`
	ClientReferenceID string               `json:"client_reference_id" gorm:"type:varchar(255);not null;index"`
	EventType         string               `json:"event_type,omitempty" gorm:"type:varchar(100)"`
	MeetingPlatform   MeetingPlatform      `json:"meeting_platform" gorm:"type:varchar(32)"`
	IsGoogleMeet      bool                 `json:"is_google_meet" gorm:"default:false"`
	EnrichmentStatus  EnrichmentStatus     `json:"enrichment_status" gorm:"type:varchar(32);not null;index"`
	EnrichmentError   string               `json:"enrichment_error,omitempty" gorm:"type:text"`
	TranscriptText    *string              `json:"transcript_text,omitempty" gorm:"type:text"`
	Sentences         []TranscriptSentence `json:"transcript_sentences,omitempty" gorm:"type:jsonb;serializer:json"`
	ParticipantEmails []string             `json:"participant_emails,omitempty" gorm:"type:jsonb;serializer:json"`
	DispatchOutcomes  []DispatchOutcome    `json:"dispatch_outcomes,omitempty" gorm:"type:jsonb;serializer:json"`
	RawPayload        datatypes.JSON       `json:"raw_payload" gorm:"type:jsonb"`
	ReceivedAt        time.Time            `json:"received_at" gorm:"not null;index:idx_transcriptions_meeting,priority:2,sort:desc"`
	CreatedAt         time.Time            `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time            `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (TranscriptionRecord) TableName() string {
	return "transcription_records"
}

// NewTranscriptionRecord creates the initial record for a normalized
// event. The raw payload is stored verbatim.
func NewTranscriptionRecord(event MeetingEvent) *TranscriptionRecord {
	return &TranscriptionRecord{
		ID:                uuid.New(),
		Provider:          event.Provider,
		MeetingID:         event.MeetingID,
		ClientReferenceID: event.ClientReferenceID,
		EventType:         event.EventType,
		MeetingPlatform:   event.Platform,
		IsGoogleMeet:      event.Platform == PlatformGoogleMeet,
		EnrichmentStatus:  StatusReceived,
		RawPayload:        datatypes.JSON(event.RawPayload),
		ReceivedAt:        event.ReceivedAt,
	}
}

// TranscriptTextAvailable reports whether transcript text was fetched.
func (r *TranscriptionRecord) TranscriptTextAvailable() bool {
	return r.TranscriptText != nil && *r.TranscriptText != ""
}

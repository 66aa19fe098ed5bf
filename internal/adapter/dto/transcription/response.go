package transcription

import (
	"time"

	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
)

// RecordResponse represents a transcription record in responses. The raw
// webhook payload is deliberately not projected; it can be large and is
// only useful for debugging directly against the database.
type RecordResponse struct {
	ID                      string                        `json:"id"`
	Provider                string                        `json:"provider"`
	MeetingID               string                        `json:"meeting_id"`
	ClientReferenceID       string                        `json:"client_reference_id"`
	EventType               string                        `json:"event_type,omitempty"`
	MeetingPlatform         string                        `json:"meeting_platform"`
	IsGoogleMeet            bool                          `json:"is_google_meet"`
	EnrichmentStatus        string                        `json:"enrichment_status"`
	EnrichmentError         string                        `json:"enrichment_error,omitempty"`
	TranscriptTextAvailable bool                          `json:"transcript_text_available"`
	TranscriptText          *string                       `json:"transcript_text,omitempty"`
	TranscriptSentences     []entities.TranscriptSentence `json:"transcript_sentences,omitempty"`
	SentenceCount           int                           `json:"sentence_count"`
	ParticipantEmails       []string                      `json:"participant_emails,omitempty"`
	DispatchOutcomes        []entities.DispatchOutcome    `json:"dispatch_outcomes,omitempty"`
	ReceivedAt              time.Time                     `json:"received_at"`
	CreatedAt               time.Time                     `json:"created_at"`
	UpdatedAt               time.Time                     `json:"updated_at"`
}

// RecordListResponse wraps a page of records
type RecordListResponse struct {
	Items []RecordResponse `json:"items"`
	Count int              `json:"count"`
}

// FromRecord maps a record entity to its response shape. includeText
// controls whether the full transcript body and its sentences are
// projected; list endpoints leave both out and carry the count only.
func FromRecord(record *entities.TranscriptionRecord, includeText bool) RecordResponse {
	resp := RecordResponse{
		ID:                      record.ID.String(),
		Provider:                string(record.Provider),
		MeetingID:               record.MeetingID,
		ClientReferenceID:       record.ClientReferenceID,
		EventType:               record.EventType,
		MeetingPlatform:         string(record.MeetingPlatform),
		IsGoogleMeet:            record.IsGoogleMeet,
		EnrichmentStatus:        string(record.EnrichmentStatus),
		EnrichmentError:         record.EnrichmentError,
		TranscriptTextAvailable: record.TranscriptTextAvailable(),
		SentenceCount:           len(record.Sentences),
		ParticipantEmails:       record.ParticipantEmails,
		DispatchOutcomes:        record.DispatchOutcomes,
		ReceivedAt:              record.ReceivedAt,
		CreatedAt:               record.CreatedAt,
		UpdatedAt:               record.UpdatedAt,
	}
	if includeText {
		resp.TranscriptText = record.TranscriptText
		resp.TranscriptSentences = record.Sentences
	}
	return resp
}

// FromRecords maps a slice of record entities for list responses.
func FromRecords(records []entities.TranscriptionRecord) RecordListResponse {
	items := make([]RecordResponse, 0, len(records))
	for i := range records {
		items = append(items, FromRecord(&records[i], false))
	}
	return RecordListResponse{Items: items, Count: len(items)}
}

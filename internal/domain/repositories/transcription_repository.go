package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
)

// TranscriptionRepository persists transcription records. Implementations
// must make every status transition a single atomic update so a reader
// never observes a transcript without its sentences.
type TranscriptionRepository interface {
	Create(ctx context.Context, record *entities.TranscriptionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.TranscriptionRecord, error)
	GetLatestByMeetingID(ctx context.Context, meetingID string) (*entities.TranscriptionRecord, error)
	ListRecent(ctx context.Context, limit int) ([]entities.TranscriptionRecord, error)

	// UpdateStatus moves a record forward in the pipeline.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.EnrichmentStatus) error

	// SetTranscript stores fetched transcript data and marks the record
	// transcript_ready in one write.
	SetTranscript(ctx context.Context, id uuid.UUID, text string, sentences []entities.TranscriptSentence, emails []string) error

	// SetFailure records a terminal-but-retriable failure state.
	SetFailure(ctx context.Context, id uuid.UUID, status entities.EnrichmentStatus, reason string) error

	// SetDispatchOutcomes stores per-destination results together with the
	// final status in one write.
	SetDispatchOutcomes(ctx context.Context, id uuid.UUID, status entities.EnrichmentStatus, outcomes []entities.DispatchOutcome) error

	// UpdateTranscriptByMeetingID repairs transcript data on all records
	// for a meeting in place. Returns the number of records updated.
	UpdateTranscriptByMeetingID(ctx context.Context, meetingID string, text string, sentences []entities.TranscriptSentence, emails []string, status entities.EnrichmentStatus, enrichmentError string) (int64, error)
}

// ActionItemCreationRepository persists one row per task successfully
// created in a Kanban destination.
type ActionItemCreationRepository interface {
	CreateMany(ctx context.Context, creations []entities.ActionItemCreation) error

	// UpdateCalendarSync records the calendar leg outcome for one row,
	// used by backfill when it retries failed event creation.
	UpdateCalendarSync(ctx context.Context, id uuid.UUID, status entities.CalendarSyncStatus, eventRef, syncError string) error

	ListByMeetingID(ctx context.Context, meetingID string) ([]entities.ActionItemCreation, error)
}

// SettingsRepository reads per-user destination configuration. The
// pipeline never writes through it.
type SettingsRepository interface {
	// GetByClientReference returns nil, nil when the tenant is unknown.
	GetByClientReference(ctx context.Context, clientReferenceID string) (*entities.IntegrationSettings, error)
}

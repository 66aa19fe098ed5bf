package enrichment

import (
	"context"
	"time"

	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
)

// TranscriptFetcher retrieves the full transcript for a meeting from
// the provider's API.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, meetingID string) (*entities.MeetingTranscript, error)
}

// TaskExtractor turns a transcript into a list of action items.
type TaskExtractor interface {
	ExtractActionItems(ctx context.Context, transcript *entities.MeetingTranscript) ([]entities.ActionItem, error)
}

// KanbanDestination creates one task in one Kanban tool. CreateTask
// returns the destination's reference for the created task.
type KanbanDestination interface {
	Kind() entities.DestinationKind
	CreateTask(ctx context.Context, meetingID string, item entities.ActionItem) (string, error)
}

// CalendarDestination creates a due-date event for a task.
type CalendarDestination interface {
	CreateDueDateEvent(ctx context.Context, meetingID string, item entities.ActionItem) (string, error)
}

// DestinationFactory resolves a tenant's settings snapshot into live
// destination clients. Calendar returns nil when the tenant has no
// calendar configured.
type DestinationFactory interface {
	KanbanDestinations(settings *entities.IntegrationSettings) []KanbanDestination
	Calendar(settings *entities.IntegrationSettings) CalendarDestination
}

// BackfillLock serializes backfill runs per meeting across instances.
type BackfillLock interface {
	// Acquire returns false when another backfill currently holds the
	// meeting.
	Acquire(ctx context.Context, meetingID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, meetingID string) error
}

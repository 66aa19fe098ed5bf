package enrichment

import (
	"context"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/lezatlabs/scheduling-backend/errors"
	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
)

// backfillLockTTL bounds how long a crashed backfill can block the next
// one for the same meeting.
const backfillLockTTL = 5 * time.Minute

// BackfillResult summarizes one repair run.
type BackfillResult struct {
	MeetingID               string                    `json:"meeting_id"`
	UpdatedCount            int64                     `json:"updated_count"`
	EnrichmentStatus        entities.EnrichmentStatus `json:"enrichment_status"`
	TranscriptTextAvailable bool                      `json:"transcript_text_available"`
	TasksCreated            int                       `json:"tasks_created"`
	TasksSkipped            int                       `json:"tasks_skipped"`
}

// BackfillMeeting re-fetches the transcript for a meeting and repairs
// every stored record for it in place, then re-runs extraction and
// dispatch. Tasks already created by an earlier run are skipped per
// destination, which makes the operation safe to repeat.
func (s *service) BackfillMeeting(ctx context.Context, meetingID string) (*BackfillResult, error) {
	latest, err := s.transcriptions.GetLatestByMeetingID(ctx, meetingID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("record lookup", err)
	}
	if latest == nil {
		return nil, apperrors.ErrRecordNotFound(meetingID)
	}
	if latest.Provider != entities.ProviderFireflies {
		return nil, apperrors.ErrBackfillUnsupported(string(latest.Provider))
	}
	fetcher := s.fetchers[entities.ProviderFireflies]
	if fetcher == nil {
		return nil, apperrors.ErrInvalidArgument("fireflies transcript fetch is not configured")
	}

	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, meetingID, backfillLockTTL)
		if err != nil {
			return nil, apperrors.ErrCacheFailed("backfill lock", err)
		}
		if !acquired {
			return nil, apperrors.ErrBackfillInProgress(meetingID)
		}
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx), meetingID); err != nil {
				s.logger.Warn("backfill lock release failed", zap.String("meeting_id", meetingID), zap.Error(err))
			}
		}()
	}

	transcript, err := fetcher.FetchTranscript(ctx, meetingID)
	if err != nil {
		return nil, apperrors.ErrProviderFetchFailed(string(entities.ProviderFireflies), err)
	}

	status := entities.StatusTranscriptReady
	var enrichmentError string
	var tasksCreated, tasksSkipped int

	userSettings, err := s.settings.GetByClientReference(ctx, latest.ClientReferenceID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("settings lookup", err)
	}

	existing, err := s.creations.ListByMeetingID(ctx, meetingID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("creation lookup", err)
	}

	var creations []entities.ActionItemCreation
	if userSettings != nil && userSettings.AutosyncEnabled && len(userSettings.KanbanKinds()) > 0 && s.extractor != nil {
		items, err := s.extractor.ExtractActionItems(ctx, transcript)
		if err != nil {
			status = entities.StatusFailedPartial
			enrichmentError = apperrors.ErrExtractionFailed(err).Error()
			s.logger.Warn("backfill extraction failed", zap.String("meeting_id", meetingID), zap.Error(err))
		} else {
			result := s.dispatcher.Dispatch(ctx, dispatchRequest{
				MeetingID:         meetingID,
				Provider:          entities.ProviderFireflies,
				ClientReferenceID: latest.ClientReferenceID,
				RecordID:          latest.ID,
				Source:            "backfill",
				Settings:          userSettings,
				Items:             items,
				AlreadyDispatched: dispatchedKeys(existing),
			})
			creations = result.Creations
			tasksCreated = result.KanbanCreated
			for _, o := range result.Outcomes {
				if o.Status == OutcomeSkipped {
					tasksSkipped++
				}
			}
			if result.KanbanAttempted > 0 && result.KanbanCreated == 0 {
				status = entities.StatusFailedPartial
			} else {
				status = entities.StatusDispatched
			}
		}
	}

	// Rows whose calendar leg failed on an earlier run get a second
	// chance; the Kanban card already exists, only the event is missing.
	if userSettings != nil && userSettings.AutosyncEnabled {
		for _, repair := range s.dispatcher.RetryCalendarSync(ctx, meetingID, userSettings, existing) {
			if err := s.creations.UpdateCalendarSync(ctx, repair.RowID, repair.Status, repair.EventRef, repair.Error); err != nil {
				s.logger.Error("calendar repair persist failed", zap.String("meeting_id", meetingID), zap.Error(err))
			}
		}
	}

	updated, err := s.transcriptions.UpdateTranscriptByMeetingID(
		ctx, meetingID,
		transcript.Text, transcript.Sentences, transcript.ParticipantEmails,
		status, enrichmentError,
	)
	if err != nil {
		return nil, apperrors.ErrStorageUnavailable(err)
	}
	if updated == 0 {
		return nil, apperrors.ErrRecordNotFound(meetingID)
	}

	if len(creations) > 0 {
		if err := s.creations.CreateMany(ctx, creations); err != nil {
			s.logger.Error("backfill creation rows persist failed", zap.String("meeting_id", meetingID), zap.Error(err))
		}
	}

	s.logger.Info("backfill completed",
		zap.String("meeting_id", meetingID),
		zap.Int64("updated_count", updated),
		zap.Int("tasks_created", tasksCreated),
		zap.Int("tasks_skipped", tasksSkipped))

	return &BackfillResult{
		MeetingID:               meetingID,
		UpdatedCount:            updated,
		EnrichmentStatus:        status,
		TranscriptTextAvailable: transcript.Text != "",
		TasksCreated:            tasksCreated,
		TasksSkipped:            tasksSkipped,
	}, nil
}

// dispatchedKeys collects (destination, title) pairs already created for
// the meeting so a repeated backfill never duplicates tasks.
func dispatchedKeys(existing []entities.ActionItemCreation) map[dispatchKey]struct{} {
	keys := make(map[dispatchKey]struct{}, len(existing))
	for _, c := range existing {
		keys[dispatchKey{Destination: c.DestinationKind, Title: c.Title}] = struct{}{}
	}
	return keys
}

package enrichment

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/lezatlabs/scheduling-backend/errors"
	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
	"github.com/lezatlabs/scheduling-backend/internal/domain/repositories"
	pkgclients "github.com/lezatlabs/scheduling-backend/pkg/clients"
	"github.com/lezatlabs/scheduling-backend/pkg/config"
)

// Service is the transcription enrichment pipeline: webhook intake,
// transcript fetch, task extraction, destination fan-out and backfill.
type Service interface {
	HandleWebhook(ctx context.Context, in WebhookInput) (*WebhookResult, error)
	ListReceived(ctx context.Context, limit int) ([]entities.TranscriptionRecord, error)
	GetRecord(ctx context.Context, id uuid.UUID) (*entities.TranscriptionRecord, error)
	GetLatestByMeetingID(ctx context.Context, meetingID string) (*entities.TranscriptionRecord, error)
	BackfillMeeting(ctx context.Context, meetingID string) (*BackfillResult, error)
}

// WebhookInput is one raw webhook delivery plus its auth material.
type WebhookInput struct {
	Provider          entities.Provider
	ClientReferenceID string
	Body              []byte
	Signature         string // x-hub-signature header, HMAC providers only
	SharedSecret      string // shared-secret header fallback
}

// WebhookResult is the synchronous pipeline outcome returned to the
// provider. Enrichment failures after the record was accepted are
// reported here, not as HTTP errors.
type WebhookResult struct {
	RecordID                uuid.UUID                 `json:"record_id"`
	Provider                entities.Provider         `json:"provider"`
	MeetingID               string                    `json:"meeting_id"`
	ClientReferenceID       string                    `json:"client_reference_id"`
	EventType               string                    `json:"event_type,omitempty"`
	MeetingPlatform         entities.MeetingPlatform  `json:"meeting_platform"`
	IsGoogleMeet            bool                      `json:"is_google_meet"`
	TranscriptTextAvailable bool                      `json:"transcript_text_available"`
	EnrichmentStatus        entities.EnrichmentStatus `json:"enrichment_status"`
	EnrichmentError         string                    `json:"enrichment_error,omitempty"`
	TasksCreated            int                       `json:"tasks_created"`
	ReceivedAt              time.Time                 `json:"received_at"`
}

type service struct {
	transcriptions repositories.TranscriptionRepository
	creations      repositories.ActionItemCreationRepository
	settings       repositories.SettingsRepository
	fetchers       map[entities.Provider]TranscriptFetcher
	extractor      TaskExtractor
	dispatcher     *Dispatcher
	lock           BackfillLock
	cfg            *config.Config
	logger         *zap.Logger
}

// NewService constructs the enrichment pipeline. Fetchers and the
// extractor may be nil for capabilities that are not configured; the
// pipeline degrades to stopping at the last reachable status.
func NewService(
	transcriptions repositories.TranscriptionRepository,
	creations repositories.ActionItemCreationRepository,
	settings repositories.SettingsRepository,
	fetchers map[entities.Provider]TranscriptFetcher,
	extractor TaskExtractor,
	dispatcher *Dispatcher,
	lock BackfillLock,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		transcriptions: transcriptions,
		creations:      creations,
		settings:       settings,
		fetchers:       fetchers,
		extractor:      extractor,
		dispatcher:     dispatcher,
		lock:           lock,
		cfg:            cfg,
		logger:         logger,
	}
}

// HandleWebhook runs the full synchronous pipeline for one delivery.
// Re-deliveries of the same event are stored as new records; backfill is
// the repair path for duplicates and partial failures.
func (s *service) HandleWebhook(ctx context.Context, in WebhookInput) (*WebhookResult, error) {
	if !in.Provider.IsValid() {
		return nil, apperrors.ErrUnknownProvider(string(in.Provider))
	}
	if err := s.validateAuth(in); err != nil {
		return nil, err
	}

	// Tenant resolution happens before any write so an unknown tenant
	// leaves no trace.
	userSettings, err := s.settings.GetByClientReference(ctx, in.ClientReferenceID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("settings lookup", err)
	}
	if userSettings == nil {
		return nil, apperrors.ErrUnknownTenant(in.ClientReferenceID)
	}

	event, err := NormalizeEvent(in.Provider, in.ClientReferenceID, in.Body)
	if err != nil {
		return nil, err
	}

	record := entities.NewTranscriptionRecord(*event)
	if err := s.transcriptions.Create(ctx, record); err != nil {
		return nil, apperrors.ErrDBQueryFailed("record create", err)
	}

	s.logger.Info("webhook accepted",
		zap.String("provider", string(event.Provider)),
		zap.String("meeting_id", event.MeetingID),
		zap.String("record_id", record.ID.String()),
		zap.String("event_type", event.EventType))

	if !event.IsCompletionEvent() {
		return s.resultFor(record, event, 0), nil
	}

	s.enrich(ctx, record, event, userSettings)
	return s.resultFor(record, event, countCreated(record.DispatchOutcomes)), nil
}

// enrich runs fetch, extract and dispatch, mutating the record in memory
// to mirror what was persisted. Failures mark the record and stop;
// they are never returned as webhook errors.
func (s *service) enrich(ctx context.Context, record *entities.TranscriptionRecord, event *entities.MeetingEvent, userSettings *entities.IntegrationSettings) {
	// A completion event without a configured fetcher and without inline
	// transcript text has no transcript source at all. That is a
	// configuration gap, not a fetch failure: the record stays at
	// received so a later backfill can pick it up.
	if s.fetchers[event.Provider] == nil && event.TranscriptText == "" {
		s.logger.Warn("no transcript source configured, record kept at received",
			zap.String("provider", string(event.Provider)),
			zap.String("record_id", record.ID.String()))
		return
	}

	transcript, ok := s.fetchTranscript(ctx, record, event)
	if !ok {
		return
	}

	if err := s.transcriptions.SetTranscript(ctx, record.ID, transcript.Text, transcript.Sentences, transcript.ParticipantEmails); err != nil {
		s.logger.Error("transcript persist failed", zap.String("record_id", record.ID.String()), zap.Error(err))
		return
	}
	record.EnrichmentStatus = entities.StatusTranscriptReady
	record.TranscriptText = &transcript.Text
	record.Sentences = transcript.Sentences
	record.ParticipantEmails = transcript.ParticipantEmails

	// Calendar is a secondary leg on Kanban creations, never a
	// destination on its own: without a Kanban tool there is nothing to
	// dispatch and the record stops here.
	if !userSettings.AutosyncEnabled || len(userSettings.KanbanKinds()) == 0 || s.extractor == nil {
		return
	}

	if err := s.transcriptions.UpdateStatus(ctx, record.ID, entities.StatusExtractingTasks); err != nil {
		s.logger.Error("status update failed", zap.String("record_id", record.ID.String()), zap.Error(err))
		return
	}
	record.EnrichmentStatus = entities.StatusExtractingTasks

	items, err := s.extractor.ExtractActionItems(ctx, transcript)
	if err != nil {
		s.failRecord(ctx, record, entities.StatusFailedPartial, apperrors.ErrExtractionFailed(err).Error())
		return
	}

	result := s.dispatcher.Dispatch(ctx, dispatchRequest{
		MeetingID:         event.MeetingID,
		Provider:          event.Provider,
		ClientReferenceID: event.ClientReferenceID,
		RecordID:          record.ID,
		Source:            "webhook",
		Settings:          userSettings,
		Items:             items,
	})
	s.persistDispatch(ctx, record, result)
}

// fetchTranscript resolves transcript content for the event, preferring
// the provider API and falling back to text carried inline in the
// payload. Returns false when the record was marked failed.
func (s *service) fetchTranscript(ctx context.Context, record *entities.TranscriptionRecord, event *entities.MeetingEvent) (*entities.MeetingTranscript, bool) {
	if err := s.transcriptions.UpdateStatus(ctx, record.ID, entities.StatusFetchingTranscript); err != nil {
		s.logger.Error("status update failed", zap.String("record_id", record.ID.String()), zap.Error(err))
		return nil, false
	}
	record.EnrichmentStatus = entities.StatusFetchingTranscript

	inline := &entities.MeetingTranscript{
		TranscriptID:      event.MeetingID,
		Text:              event.TranscriptText,
		ParticipantEmails: event.ParticipantEmails,
	}

	// enrich only enters here with a fetcher or inline payload text, so a
	// nil fetcher always resolves to the inline transcript.
	fetcher := s.fetchers[event.Provider]
	if fetcher == nil {
		return inline, true
	}

	transcript, err := fetcher.FetchTranscript(ctx, event.MeetingID)
	if err != nil {
		s.logger.Warn("transcript fetch failed",
			zap.String("provider", string(event.Provider)),
			zap.String("meeting_id", event.MeetingID),
			zap.Error(err))
		if event.TranscriptText != "" {
			return inline, true
		}
		s.failRecord(ctx, record, entities.StatusFailed,
			apperrors.ErrProviderFetchFailed(string(event.Provider), err).Error())
		return nil, false
	}
	if len(transcript.ParticipantEmails) == 0 {
		transcript.ParticipantEmails = event.ParticipantEmails
	}
	return transcript, true
}

func (s *service) persistDispatch(ctx context.Context, record *entities.TranscriptionRecord, result dispatchResult) {
	status := entities.StatusDispatched
	if result.KanbanAttempted > 0 && result.KanbanCreated == 0 {
		status = entities.StatusFailedPartial
	}

	if err := s.transcriptions.SetDispatchOutcomes(ctx, record.ID, status, result.Outcomes); err != nil {
		s.logger.Error("dispatch outcome persist failed", zap.String("record_id", record.ID.String()), zap.Error(err))
		return
	}
	record.EnrichmentStatus = status
	record.DispatchOutcomes = result.Outcomes

	if len(result.Creations) > 0 {
		if err := s.creations.CreateMany(ctx, result.Creations); err != nil {
			s.logger.Error("creation rows persist failed", zap.String("record_id", record.ID.String()), zap.Error(err))
		}
	}
}

func (s *service) failRecord(ctx context.Context, record *entities.TranscriptionRecord, status entities.EnrichmentStatus, reason string) {
	if err := s.transcriptions.SetFailure(ctx, record.ID, status, reason); err != nil {
		s.logger.Error("failure persist failed", zap.String("record_id", record.ID.String()), zap.Error(err))
		return
	}
	record.EnrichmentStatus = status
	record.EnrichmentError = reason
}

// validateAuth enforces the provider's webhook secret when one is
// configured. Fireflies signs payloads with HMAC; a shared-secret header
// is accepted as a fallback for both providers.
func (s *service) validateAuth(in WebhookInput) error {
	var secret string
	switch in.Provider {
	case entities.ProviderFireflies:
		secret = s.cfg.Fireflies.WebhookSecret
	case entities.ProviderReadAI:
		secret = s.cfg.ReadAI.WebhookSecret
	}
	if secret == "" {
		return nil
	}

	if in.Provider == entities.ProviderFireflies && in.Signature != "" {
		if pkgclients.VerifyWebhookSignature(secret, in.Body, in.Signature) {
			return nil
		}
	}
	if subtle.ConstantTimeCompare([]byte(in.SharedSecret), []byte(secret)) == 1 {
		return nil
	}
	return apperrors.ErrInvalidSignature()
}

func (s *service) resultFor(record *entities.TranscriptionRecord, event *entities.MeetingEvent, tasksCreated int) *WebhookResult {
	return &WebhookResult{
		RecordID:                record.ID,
		Provider:                record.Provider,
		MeetingID:               record.MeetingID,
		ClientReferenceID:       record.ClientReferenceID,
		EventType:               record.EventType,
		MeetingPlatform:         record.MeetingPlatform,
		IsGoogleMeet:            record.IsGoogleMeet,
		TranscriptTextAvailable: record.TranscriptTextAvailable(),
		EnrichmentStatus:        record.EnrichmentStatus,
		EnrichmentError:         record.EnrichmentError,
		TasksCreated:            tasksCreated,
		ReceivedAt:              event.ReceivedAt,
	}
}

func countCreated(outcomes []entities.DispatchOutcome) int {
	count := 0
	for _, o := range outcomes {
		if o.Status == OutcomeCreated && o.Destination != entities.DestinationGoogleCalendar {
			count++
		}
	}
	return count
}

// ListReceived returns the most recent records, newest first. Limits are
// clamped to [1, 200].
func (s *service) ListReceived(ctx context.Context, limit int) ([]entities.TranscriptionRecord, error) {
	if limit < 1 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	records, err := s.transcriptions.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.ErrStorageUnavailable(err)
	}
	return records, nil
}

func (s *service) GetRecord(ctx context.Context, id uuid.UUID) (*entities.TranscriptionRecord, error) {
	record, err := s.transcriptions.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("record lookup", err)
	}
	if record == nil {
		return nil, apperrors.ErrNotFound("transcription record")
	}
	return record, nil
}

func (s *service) GetLatestByMeetingID(ctx context.Context, meetingID string) (*entities.TranscriptionRecord, error) {
	record, err := s.transcriptions.GetLatestByMeetingID(ctx, meetingID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("record lookup", err)
	}
	if record == nil {
		return nil, apperrors.ErrRecordNotFound(meetingID)
	}
	return record, nil
}

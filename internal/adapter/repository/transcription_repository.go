package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
)

// TranscriptionRepository handles transcription record data operations
type TranscriptionRepository struct {
	db *gorm.DB
}

// NewTranscriptionRepository creates a new transcription repository
func NewTranscriptionRepository(db *gorm.DB) *TranscriptionRepository {
	return &TranscriptionRepository{db: db}
}

// Create creates a new transcription record
func (r *TranscriptionRepository) Create(ctx context.Context, record *entities.TranscriptionRecord) error {
	if record == nil {
		return errors.New("transcription record cannot be nil")
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// GetByID retrieves a record by ID
func (r *TranscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.TranscriptionRecord, error) {
	var record entities.TranscriptionRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetLatestByMeetingID retrieves the most recently received record for a meeting
func (r *TranscriptionRepository) GetLatestByMeetingID(ctx context.Context, meetingID string) (*entities.TranscriptionRecord, error) {
	var record entities.TranscriptionRecord
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("received_at DESC").
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ListRecent retrieves the newest records first
func (r *TranscriptionRepository) ListRecent(ctx context.Context, limit int) ([]entities.TranscriptionRecord, error) {
	var records []entities.TranscriptionRecord
	if err := r.db.WithContext(ctx).
		Order("received_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateStatus moves a record forward in the pipeline
func (r *TranscriptionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.EnrichmentStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptionRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"enrichment_status": status,
		}).Error
}

// SetTranscript stores fetched transcript data and marks the record
// transcript_ready in a single update
func (r *TranscriptionRepository) SetTranscript(ctx context.Context, id uuid.UUID, text string, sentences []entities.TranscriptSentence, emails []string) error {
	sentencesJSON, err := toJSONB(sentences)
	if err != nil {
		return err
	}
	emailsJSON, err := toJSONB(emails)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptionRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"enrichment_status":  entities.StatusTranscriptReady,
			"enrichment_error":   "",
			"transcript_text":    text,
			"sentences":          sentencesJSON,
			"participant_emails": emailsJSON,
		}).Error
}

// SetFailure records a failure state and reason
func (r *TranscriptionRepository) SetFailure(ctx context.Context, id uuid.UUID, status entities.EnrichmentStatus, reason string) error {
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptionRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"enrichment_status": status,
			"enrichment_error":  reason,
		}).Error
}

// SetDispatchOutcomes stores per-destination results with the final
// status in a single update
func (r *TranscriptionRepository) SetDispatchOutcomes(ctx context.Context, id uuid.UUID, status entities.EnrichmentStatus, outcomes []entities.DispatchOutcome) error {
	outcomesJSON, err := toJSONB(outcomes)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptionRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"enrichment_status": status,
			"dispatch_outcomes": outcomesJSON,
		}).Error
}

// UpdateTranscriptByMeetingID repairs transcript data on every record for
// a meeting in place. Returns the number of rows updated.
func (r *TranscriptionRepository) UpdateTranscriptByMeetingID(ctx context.Context, meetingID string, text string, sentences []entities.TranscriptSentence, emails []string, status entities.EnrichmentStatus, enrichmentError string) (int64, error) {
	sentencesJSON, err := toJSONB(sentences)
	if err != nil {
		return 0, err
	}
	emailsJSON, err := toJSONB(emails)
	if err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).
		Model(&entities.TranscriptionRecord{}).
		Where("meeting_id = ?", meetingID).
		Updates(map[string]interface{}{
			"enrichment_status":  status,
			"enrichment_error":   enrichmentError,
			"transcript_text":    text,
			"sentences":          sentencesJSON,
			"participant_emails": emailsJSON,
		})
	return result.RowsAffected, result.Error
}

// toJSONB marshals a value for a jsonb column update. Map-based updates
// bypass GORM's field serializers, so the marshalling is explicit here.
func toJSONB(value interface{}) (datatypes.JSON, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

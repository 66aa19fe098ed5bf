package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
)

// ActionItemCreationRepository handles per-task creation row operations
type ActionItemCreationRepository struct {
	db *gorm.DB
}

// NewActionItemCreationRepository creates a new action item creation repository
func NewActionItemCreationRepository(db *gorm.DB) *ActionItemCreationRepository {
	return &ActionItemCreationRepository{db: db}
}

// CreateMany inserts one row per successfully created task
func (r *ActionItemCreationRepository) CreateMany(ctx context.Context, creations []entities.ActionItemCreation) error {
	if len(creations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&creations).Error
}

// UpdateCalendarSync records the calendar leg outcome for one row
func (r *ActionItemCreationRepository) UpdateCalendarSync(ctx context.Context, id uuid.UUID, status entities.CalendarSyncStatus, eventRef, syncError string) error {
	return r.db.WithContext(ctx).
		Model(&entities.ActionItemCreation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"calendar_sync_status": status,
			"calendar_event_ref":   eventRef,
			"calendar_error":       syncError,
		}).Error
}

// ListByMeetingID retrieves all creation rows for a meeting, newest first
func (r *ActionItemCreationRepository) ListByMeetingID(ctx context.Context, meetingID string) ([]entities.ActionItemCreation, error) {
	var rows []entities.ActionItemCreation
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}


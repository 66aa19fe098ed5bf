package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
)

// SettingsRepository handles per-user integration settings reads
type SettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetByClientReference retrieves a tenant's settings. Returns nil, nil
// when the tenant is unknown.
func (r *SettingsRepository) GetByClientReference(ctx context.Context, clientReferenceID string) (*entities.IntegrationSettings, error) {
	var settings entities.IntegrationSettings
	if err := r.db.WithContext(ctx).
		Where("client_reference_id = ?", clientReferenceID).
		First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

package repository

import (
	"context"

	"price-reconciler-service/internal/models"
	"gorm.io/gorm"
)

// LogRepository writes the append-only editor audit tables
type LogRepository struct {
	db *gorm.DB
}

// NewLogRepository creates a new log repository
func NewLogRepository(db *gorm.DB) *LogRepository {
	return &LogRepository{db: db}
}

// RecordCreate logs a product created through the editor
func (r *LogRepository) RecordCreate(ctx context.Context, entry *models.CreateLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// RecordChange logs a field-level diff of an update
func (r *LogRepository) RecordChange(ctx context.Context, entry *models.ChangeLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// RecordDelete logs a product removed during duplicate resolution
func (r *LogRepository) RecordDelete(ctx context.Context, entry *models.DeleteLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListChangesByVariant returns the change history for one variant, newest
// first.
func (r *LogRepository) ListChangesByVariant(ctx context.Context, variantID string) ([]models.ChangeLogEntry, error) {
	var entries []models.ChangeLogEntry
	if err := r.db.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Order("updated_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

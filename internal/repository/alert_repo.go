package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/fairshare-api/internal/models"
)

// AlertRepository persists manually managed contribution alerts.
type AlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	GetByID(ctx context.Context, id string) (models.Alert, error)
	ListOpen(ctx context.Context, projectID string) ([]models.Alert, error)
	MarkResolved(ctx context.Context, id string, resolvedAt time.Time) error
}

type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository constructs an alert repository.
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *models.Alert) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(alert).Error
}

func (r *alertRepository) GetByID(ctx context.Context, id string) (models.Alert, error) {
	var alert models.Alert
	if err := r.db.WithContext(ctx).Preload("Student").First(&alert, "id = ?", id).Error; err != nil {
		return models.Alert{}, err
	}
	return alert, nil
}

// ListOpen returns unresolved alerts, most severe first, then newest.
func (r *alertRepository) ListOpen(ctx context.Context, projectID string) ([]models.Alert, error) {
	var alerts []models.Alert
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("project_id = ? AND is_resolved = ?", projectID, false).
		Order("CASE severity WHEN 'high' THEN 0 WHEN 'medium' THEN 1 WHEN 'low' THEN 2 ELSE 3 END").
		Order("created_at DESC").
		Find(&alerts).Error
	return alerts, err
}

// MarkResolved flips an open alert to resolved. It is a no-op for alerts already resolved.
func (r *alertRepository) MarkResolved(ctx context.Context, id string, resolvedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("id = ? AND is_resolved = ?", id, false).
		Updates(map[string]interface{}{
			"is_resolved": true,
			"resolved_at": resolvedAt,
		}).Error
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/fairshare-api/internal/models"
)

// ActivityLogFilter narrows activity log queries.
type ActivityLogFilter struct {
	ProjectID string
	GroupID   string
	UserID    string
	Since     *time.Time
	Until     *time.Time
	Limit     int
}

// ActivityLogRepository persists the append-only activity trail.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, error)
	ListByProject(ctx context.Context, projectID string) ([]models.ActivityLog, error)
	AggregateByMember(ctx context.Context, projectID string) ([]models.ActivityAggregate, error)
	ListStamps(ctx context.Context, projectID string) ([]models.ActivityStamp, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Omit("User").Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{}).Preload("User")

	if filter.ProjectID != "" {
		query = query.Where("project_id = ?", filter.ProjectID)
	}
	if filter.GroupID != "" {
		query = query.Where("group_id = ?", filter.GroupID)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Since != nil {
		query = query.Where("timestamp >= ?", filter.Since.UTC())
	}
	if filter.Until != nil {
		query = query.Where("timestamp <= ?", filter.Until.UTC())
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var entries []models.ActivityLog
	if err := query.Order("timestamp DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByProject returns every entry of the project, oldest first, for aggregation.
func (r *activityLogRepository) ListByProject(ctx context.Context, projectID string) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("timestamp ASC").
		Find(&entries).Error
	return entries, err
}

// AggregateByMember totals count, effort and per-type counts per (user, group) within the project.
func (r *activityLogRepository) AggregateByMember(ctx context.Context, projectID string) ([]models.ActivityAggregate, error) {
	var rows []models.ActivityAggregate
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Select(`user_id, group_id, COUNT(*) AS total_activities, SUM(effort_score) AS total_effort,
			SUM(CASE WHEN activity_type = ? THEN 1 ELSE 0 END) AS creates,
			SUM(CASE WHEN activity_type = ? THEN 1 ELSE 0 END) AS updates,
			SUM(CASE WHEN activity_type = ? THEN 1 ELSE 0 END) AS comments`,
			models.ActivityTypeCreate, models.ActivityTypeUpdate, models.ActivityTypeComment).
		Where("project_id = ?", projectID).
		Group("user_id, group_id").
		Order("user_id, group_id").
		Scan(&rows).Error
	return rows, err
}

// ListStamps returns only the member keys and timestamps of the project's entries, oldest first.
// Calendar days are bucketed in UTC by the caller so both drivers agree.
func (r *activityLogRepository) ListStamps(ctx context.Context, projectID string) ([]models.ActivityStamp, error) {
	var rows []models.ActivityStamp
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Select("user_id, group_id, timestamp").
		Where("project_id = ?", projectID).
		Order("timestamp ASC").
		Scan(&rows).Error
	return rows, err
}

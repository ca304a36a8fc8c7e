package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/fairshare-api/internal/models"
)

// TaskRepository persists group tasks and their comments.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (models.Task, error)
	ListByGroup(ctx context.Context, groupID string) ([]models.Task, error)
	UpdateStatus(ctx context.Context, id, status string, completedAt *time.Time) error
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, taskID string) ([]models.Comment, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository constructs a task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// GetByID loads the task together with its group so callers can resolve the project.
func (r *taskRepository) GetByID(ctx context.Context, id string) (models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Preload("Group").First(&task, "id = ?", id).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (r *taskRepository) ListByGroup(ctx context.Context, groupID string) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Preload("Assignee").
		Preload("Creator").
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

// UpdateStatus writes status and completed_at; a nil completedAt clears the column.
func (r *taskRepository) UpdateStatus(ctx context.Context, id, status string, completedAt *time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": completedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *taskRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

func (r *taskRepository) ListComments(ctx context.Context, taskID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

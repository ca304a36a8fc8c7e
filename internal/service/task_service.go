package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/fairshare-api/internal/dto"
	"github.com/noah-isme/fairshare-api/internal/models"
	"github.com/noah-isme/fairshare-api/internal/repository"
)

const commentPreviewRunes = 50

// TaskService manages group tasks and their comments.
type TaskService interface {
	Create(ctx context.Context, actorID string, payload dto.TaskCreateRequest) (dto.TaskResponse, error)
	ListByGroup(ctx context.Context, groupID string) ([]dto.TaskResponse, error)
	UpdateStatus(ctx context.Context, actorID, taskID string, payload dto.TaskStatusUpdateRequest) (dto.TaskStatusResponse, error)
	AddComment(ctx context.Context, actorID, taskID string, payload dto.CommentCreateRequest) (dto.CommentResponse, error)
	ListComments(ctx context.Context, taskID string) ([]dto.CommentResponse, error)
}

type taskService struct {
	tasks     repository.TaskRepository
	projects  repository.ProjectRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	activity  ActivityRecorder
	logger    zerolog.Logger
	now       func() time.Time
}

// NewTaskService constructs the task service.
func NewTaskService(tasks repository.TaskRepository, projects repository.ProjectRepository, validator *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) TaskService {
	return &taskService{
		tasks:     tasks,
		projects:  projects,
		validator: validator,
		sanitizer: bluemonday.StrictPolicy(),
		activity:  activity,
		logger:    logger.With().Str("component", "task_service").Logger(),
		now:       time.Now,
	}
}

func (s *taskService) Create(ctx context.Context, actorID string, payload dto.TaskCreateRequest) (dto.TaskResponse, error) {
	payload.Title = strings.TrimSpace(payload.Title)
	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskResponse{}, err
	}

	group, err := s.projects.GetGroup(ctx, payload.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskResponse{}, ErrGroupNotFound
		}
		return dto.TaskResponse{}, err
	}

	task := models.Task{
		GroupID:     group.ID,
		MilestoneID: payload.MilestoneID,
		Title:       payload.Title,
		Description: strings.TrimSpace(payload.Description),
		AssignedTo:  payload.AssignedTo,
		Status:      models.TaskStatusTodo,
		Priority:    payload.Priority,
		CreatedBy:   actorID,
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}
	if payload.DueDate != nil {
		due, err := time.Parse(dto.DateLayout, *payload.DueDate)
		if err != nil {
			return dto.TaskResponse{}, invalidInput("due_date must use YYYY-MM-DD")
		}
		task.DueDate = &due
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return dto.TaskResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		UserID:       actorID,
		ProjectID:    group.ProjectID,
		GroupID:      group.ID,
		ActivityType: models.ActivityTypeCreate,
		EntityType:   "task",
		EntityID:     task.ID,
		Description:  "Created task: " + task.Title,
		EffortScore:  Weight(EffortTaskCreated),
	})

	return dto.NewTaskResponse(task), nil
}

func (s *taskService) ListByGroup(ctx context.Context, groupID string) ([]dto.TaskResponse, error) {
	if _, err := s.projects.GetGroup(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	tasks, err := s.tasks.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return dto.NewTaskResponseSlice(tasks), nil
}

// UpdateStatus moves a task to any status. Entering completed stamps completedAt; any other status clears it.
func (s *taskService) UpdateStatus(ctx context.Context, actorID, taskID string, payload dto.TaskStatusUpdateRequest) (dto.TaskStatusResponse, error) {
	payload.Status = strings.ToLower(strings.TrimSpace(payload.Status))
	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskStatusResponse{}, err
	}

	task, err := s.lookupTask(ctx, taskID)
	if err != nil {
		return dto.TaskStatusResponse{}, err
	}

	var completedAt *time.Time
	effort := EffortStatusChanged
	if payload.Status == models.TaskStatusCompleted {
		now := s.now().UTC()
		completedAt = &now
		effort = EffortTaskCompleted
	}

	if err := s.tasks.UpdateStatus(ctx, task.ID, payload.Status, completedAt); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskStatusResponse{}, ErrTaskNotFound
		}
		return dto.TaskStatusResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		UserID:       actorID,
		ProjectID:    task.Group.ProjectID,
		GroupID:      task.GroupID,
		ActivityType: models.ActivityTypeUpdate,
		EntityType:   "task",
		EntityID:     task.ID,
		Description:  "Changed task status to " + payload.Status,
		EffortScore:  Weight(effort),
		Metadata: map[string]interface{}{
			"old_status": task.Status,
			"new_status": payload.Status,
		},
	})

	return dto.TaskStatusResponse{
		ID:          task.ID,
		Status:      payload.Status,
		CompletedAt: completedAt,
	}, nil
}

func (s *taskService) AddComment(ctx context.Context, actorID, taskID string, payload dto.CommentCreateRequest) (dto.CommentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CommentResponse{}, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if content == "" {
		return dto.CommentResponse{}, invalidInput("content must not be empty")
	}

	task, err := s.lookupTask(ctx, taskID)
	if err != nil {
		return dto.CommentResponse{}, err
	}

	comment := models.Comment{
		TaskID:  task.ID,
		UserID:  actorID,
		Content: content,
	}
	if err := s.tasks.CreateComment(ctx, &comment); err != nil {
		return dto.CommentResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		UserID:       actorID,
		ProjectID:    task.Group.ProjectID,
		GroupID:      task.GroupID,
		ActivityType: models.ActivityTypeComment,
		EntityType:   "comment",
		EntityID:     comment.ID,
		Description:  "Commented: " + truncateRunes(content, commentPreviewRunes),
		EffortScore:  Weight(EffortComment),
	})

	return dto.NewCommentResponse(comment), nil
}

func (s *taskService) ListComments(ctx context.Context, taskID string) ([]dto.CommentResponse, error) {
	if _, err := s.lookupTask(ctx, taskID); err != nil {
		return nil, err
	}

	comments, err := s.tasks.ListComments(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return dto.NewCommentResponseSlice(comments), nil
}

func (s *taskService) lookupTask(ctx context.Context, taskID string) (models.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

func truncateRunes(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit]) + "..."
}

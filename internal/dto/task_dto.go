package dto

import (
	"time"

	"github.com/noah-isme/fairshare-api/internal/models"
)

// TaskCreateRequest captures a new task for a group.
type TaskCreateRequest struct {
	GroupID     string  `json:"group_id" validate:"required"`
	MilestoneID *string `json:"milestone_id" validate:"omitempty,min=1"`
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description string  `json:"description" validate:"omitempty,max=10000"`
	AssignedTo  *string `json:"assigned_to" validate:"omitempty,min=1"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// TaskStatusUpdateRequest moves a task to another status.
type TaskStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress review completed"`
}

// CommentCreateRequest captures a new task comment.
type CommentCreateRequest struct {
	Content string `json:"content" validate:"required,min=1,max=10000"`
}

// TaskResponse serialises a task with display names.
type TaskResponse struct {
	ID             string     `json:"id"`
	GroupID        string     `json:"group_id"`
	MilestoneID    *string    `json:"milestone_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	AssignedTo     *string    `json:"assigned_to"`
	AssignedToName string     `json:"assigned_to_name,omitempty"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	DueDate        *string    `json:"due_date"`
	CreatedBy      string     `json:"created_by"`
	CreatedByName  string     `json:"created_by_name,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at"`
}

// TaskStatusResponse reports the outcome of a status change.
type TaskStatusResponse struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at"`
}

// CommentResponse serialises a task comment with its author.
type CommentResponse struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	UserEmail string    `json:"user_email,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTaskResponse converts a task model into a DTO.
func NewTaskResponse(task models.Task) TaskResponse {
	response := TaskResponse{
		ID:            task.ID,
		GroupID:       task.GroupID,
		MilestoneID:   task.MilestoneID,
		Title:         task.Title,
		Description:   task.Description,
		AssignedTo:    task.AssignedTo,
		Status:        task.Status,
		Priority:      task.Priority,
		CreatedBy:     task.CreatedBy,
		CreatedByName: task.Creator.Name,
		CreatedAt:     task.CreatedAt,
		CompletedAt:   task.CompletedAt,
	}
	if task.Assignee != nil {
		response.AssignedToName = task.Assignee.Name
	}
	if task.DueDate != nil {
		formatted := task.DueDate.Format(DateLayout)
		response.DueDate = &formatted
	}
	return response
}

// NewTaskResponseSlice converts task models into DTOs.
func NewTaskResponseSlice(tasks []models.Task) []TaskResponse {
	result := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		result = append(result, NewTaskResponse(task))
	}
	return result
}

// NewCommentResponse converts a comment model into a DTO.
func NewCommentResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		UserID:    comment.UserID,
		UserName:  comment.User.Name,
		UserEmail: comment.User.Email,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}

// NewCommentResponseSlice converts comment models into DTOs.
func NewCommentResponseSlice(comments []models.Comment) []CommentResponse {
	result := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		result = append(result, NewCommentResponse(comment))
	}
	return result
}

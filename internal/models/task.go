package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusReview     = "review"
	TaskStatusCompleted  = "completed"
)

const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// Task is a unit of work owned by a group.
type Task struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	GroupID     string     `gorm:"size:36;not null;index" json:"group_id"`
	MilestoneID *string    `gorm:"size:36" json:"milestone_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	AssignedTo  *string    `gorm:"size:36;index" json:"assigned_to"`
	Status      string     `gorm:"size:16;not null;default:todo" json:"status"`
	Priority    string     `gorm:"size:16;not null;default:medium" json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	CreatedBy   string     `gorm:"size:36;not null" json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Group       Group      `gorm:"foreignKey:GroupID" json:"-"`
	Assignee    *User      `gorm:"foreignKey:AssignedTo" json:"-"`
	Creator     User       `gorm:"foreignKey:CreatedBy" json:"-"`
}

// BeforeCreate assigns identifiers and defaults.
func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = TaskStatusTodo
	}
	if t.Priority == "" {
		t.Priority = TaskPriorityMedium
	}
	return nil
}

// IsValidTaskStatus reports whether status is one of the four task states.
func IsValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// Comment is a discussion note attached to a task.
type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TaskID    string    `gorm:"size:36;not null;index" json:"task_id"`
	UserID    string    `gorm:"size:36;not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate assigns the identifier.
func (c *Comment) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

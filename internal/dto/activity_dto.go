package dto

import (
	"time"

	"github.com/noah-isme/fairshare-api/internal/models"
)

// ActivityListRequest narrows the project activity log query.
type ActivityListRequest struct {
	ProjectID string
	GroupID   string
	UserID    string
	Since     *time.Time
	Until     *time.Time
	Limit     int
}

// ActivityResponse serialises an activity log entry with its actor.
type ActivityResponse struct {
	ID           string                 `json:"id"`
	UserID       string                 `json:"user_id"`
	UserName     string                 `json:"user_name,omitempty"`
	UserEmail    string                 `json:"user_email,omitempty"`
	ProjectID    string                 `json:"project_id"`
	GroupID      string                 `json:"group_id"`
	ActivityType string                 `json:"activity_type"`
	EntityType   string                 `json:"entity_type"`
	EntityID     string                 `json:"entity_id"`
	Description  string                 `json:"description"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	EffortScore  float64                `json:"effort_score"`
	Timestamp    time.Time              `json:"timestamp"`
}

// ActivitySummaryItem aggregates a single user's activity within a project.
type ActivitySummaryItem struct {
	UserID        string     `json:"user_id"`
	UserName      string     `json:"user_name"`
	ActivityCount int        `json:"activity_count"`
	TotalEffort   float64    `json:"total_effort"`
	FirstActivity *time.Time `json:"first_activity"`
	LastActivity  *time.Time `json:"last_activity"`
	ActiveDays    int        `json:"active_days"`
}

// NewActivityResponse converts an activity log model into a DTO.
func NewActivityResponse(entry models.ActivityLog) ActivityResponse {
	var metadata map[string]interface{}
	if len(entry.Metadata) > 0 {
		metadata = map[string]interface{}(entry.Metadata)
	}
	return ActivityResponse{
		ID:           entry.ID,
		UserID:       entry.UserID,
		UserName:     entry.User.Name,
		UserEmail:    entry.User.Email,
		ProjectID:    entry.ProjectID,
		GroupID:      entry.GroupID,
		ActivityType: entry.ActivityType,
		EntityType:   entry.EntityType,
		EntityID:     entry.EntityID,
		Description:  entry.Description,
		Metadata:     metadata,
		EffortScore:  entry.EffortScore,
		Timestamp:    entry.Timestamp,
	}
}

// NewActivityResponseSlice converts activity log models into DTOs.
func NewActivityResponseSlice(entries []models.ActivityLog) []ActivityResponse {
	result := make([]ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		result = append(result, NewActivityResponse(entry))
	}
	return result
}

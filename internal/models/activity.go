package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActivityTypeCreate  = "create"
	ActivityTypeUpdate  = "update"
	ActivityTypeComment = "comment"
)

// ActivityLog is an append-only record of a tracked student action.
type ActivityLog struct {
	ID           string            `gorm:"primaryKey;size:36" json:"id"`
	UserID       string            `gorm:"size:36;not null;index:idx_activity_user" json:"user_id"`
	ProjectID    string            `gorm:"size:36;not null;index:idx_activity_project" json:"project_id"`
	GroupID      string            `gorm:"size:36;not null;index:idx_activity_group" json:"group_id"`
	ActivityType string            `gorm:"size:32;not null" json:"activity_type"`
	EntityType   string            `gorm:"size:32;not null" json:"entity_type"`
	EntityID     string            `gorm:"size:36;not null" json:"entity_id"`
	Description  string            `gorm:"type:text;not null" json:"description"`
	Metadata     datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	EffortScore  float64           `gorm:"not null" json:"effort_score"`
	Timestamp    time.Time         `gorm:"not null;index:idx_activity_timestamp" json:"timestamp"`
	User         User              `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate assigns id and timestamp when the recorder did not.
func (a *ActivityLog) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	return nil
}

// ActivityAggregate holds per-member activity totals for a project, grouped by user and group.
type ActivityAggregate struct {
	UserID          string
	GroupID         string
	TotalActivities int64
	TotalEffort     float64
	Creates         int64
	Updates         int64
	Comments        int64
}

// ActivityStamp is the timestamp projection used for calendar-day and recency bucketing.
type ActivityStamp struct {
	UserID    string
	GroupID   string
	Timestamp time.Time
}

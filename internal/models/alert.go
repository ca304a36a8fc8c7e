package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Alert is a persisted contribution warning that faculty resolve manually.
type Alert struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	ProjectID  string     `gorm:"size:36;not null;index" json:"project_id"`
	GroupID    string     `gorm:"size:36;not null" json:"group_id"`
	StudentID  *string    `gorm:"size:36" json:"student_id"`
	AlertType  string     `gorm:"size:64;not null" json:"alert_type"`
	Severity   string     `gorm:"size:16;not null" json:"severity"`
	Message    string     `gorm:"type:text;not null" json:"message"`
	IsResolved bool       `gorm:"not null;default:false" json:"is_resolved"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at"`
	Student    *User      `gorm:"foreignKey:StudentID" json:"-"`
}

// BeforeCreate assigns the identifier.
func (a *Alert) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

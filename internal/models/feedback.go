package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PeerFeedback is one student's rating of a groupmate within a project.
// A reviewer holds at most one record per reviewee and project.
type PeerFeedback struct {
	ID                 string    `gorm:"primaryKey;size:36" json:"id"`
	ProjectID          string    `gorm:"size:36;not null;uniqueIndex:idx_feedback_triple" json:"project_id"`
	GroupID            string    `gorm:"size:36;not null" json:"group_id"`
	ReviewerID         string    `gorm:"size:36;not null;uniqueIndex:idx_feedback_triple" json:"reviewer_id"`
	RevieweeID         string    `gorm:"size:36;not null;uniqueIndex:idx_feedback_triple;index" json:"reviewee_id"`
	ContributionScore  int       `gorm:"not null" json:"contribution_score"`
	QualityScore       int       `gorm:"not null" json:"quality_score"`
	CollaborationScore int       `gorm:"not null" json:"collaboration_score"`
	Comments           string    `gorm:"type:text" json:"comments"`
	SubmittedAt        time.Time `gorm:"not null" json:"submitted_at"`
	Reviewer           User      `gorm:"foreignKey:ReviewerID" json:"-"`
	Reviewee           User      `gorm:"foreignKey:RevieweeID" json:"-"`
}

// TableName keeps the singular table name used by the reporting queries.
func (PeerFeedback) TableName() string { return "peer_feedback" }

// BeforeCreate assigns identifier and submission time.
func (f *PeerFeedback) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.SubmittedAt.IsZero() {
		f.SubmittedAt = time.Now().UTC()
	}
	return nil
}

// FeedbackAggregate holds per-reviewee averages for a project.
type FeedbackAggregate struct {
	RevieweeID       string
	AvgContribution  float64
	AvgQuality       float64
	AvgCollaboration float64
	FeedbackCount    int64
}

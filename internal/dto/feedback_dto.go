package dto

import (
	"time"

	"github.com/noah-isme/fairshare-api/internal/models"
)

// FeedbackSubmitRequest captures a peer review from the authenticated student.
type FeedbackSubmitRequest struct {
	ProjectID          string `json:"project_id" validate:"required"`
	GroupID            string `json:"group_id" validate:"required"`
	RevieweeID         string `json:"reviewee_id" validate:"required"`
	ContributionScore  int    `json:"contribution_score" validate:"required,min=1,max=5"`
	QualityScore       int    `json:"quality_score" validate:"required,min=1,max=5"`
	CollaborationScore int    `json:"collaboration_score" validate:"required,min=1,max=5"`
	Comments           string `json:"comments" validate:"omitempty,max=5000"`
}

// FeedbackResponse serialises a stored peer review.
type FeedbackResponse struct {
	ID                 string    `json:"id"`
	ProjectID          string    `json:"project_id"`
	GroupID            string    `json:"group_id"`
	ReviewerID         string    `json:"reviewer_id"`
	ReviewerName       string    `json:"reviewer_name,omitempty"`
	RevieweeID         string    `json:"reviewee_id"`
	RevieweeName       string    `json:"reviewee_name,omitempty"`
	ContributionScore  int       `json:"contribution_score"`
	QualityScore       int       `json:"quality_score"`
	CollaborationScore int       `json:"collaboration_score"`
	Comments           string    `json:"comments"`
	SubmittedAt        time.Time `json:"submitted_at"`
}

// FeedbackSummaryResponse aggregates the reviews a student received in a project.
// Averages are null when no feedback exists.
type FeedbackSummaryResponse struct {
	StudentID        string   `json:"student_id"`
	ProjectID        string   `json:"project_id"`
	AvgContribution  *float64 `json:"avg_contribution"`
	AvgQuality       *float64 `json:"avg_quality"`
	AvgCollaboration *float64 `json:"avg_collaboration"`
	FeedbackCount    int      `json:"feedback_count"`
	AllComments      string   `json:"all_comments"`
}

// NewFeedbackResponse converts a feedback model into a DTO.
func NewFeedbackResponse(feedback models.PeerFeedback) FeedbackResponse {
	return FeedbackResponse{
		ID:                 feedback.ID,
		ProjectID:          feedback.ProjectID,
		GroupID:            feedback.GroupID,
		ReviewerID:         feedback.ReviewerID,
		ReviewerName:       feedback.Reviewer.Name,
		RevieweeID:         feedback.RevieweeID,
		RevieweeName:       feedback.Reviewee.Name,
		ContributionScore:  feedback.ContributionScore,
		QualityScore:       feedback.QualityScore,
		CollaborationScore: feedback.CollaborationScore,
		Comments:           feedback.Comments,
		SubmittedAt:        feedback.SubmittedAt,
	}
}

// NewFeedbackResponseSlice converts feedback models into DTOs.
func NewFeedbackResponseSlice(items []models.PeerFeedback) []FeedbackResponse {
	result := make([]FeedbackResponse, 0, len(items))
	for _, item := range items {
		result = append(result, NewFeedbackResponse(item))
	}
	return result
}

package dto

import (
	"time"

	"github.com/noah-isme/fairshare-api/internal/models"
)

// Issue types raised by the contribution report.
const (
	IssueLowContribution = "low_contribution"
	IssueInactive        = "inactive"
	IssueDormant         = "dormant"
)

// StudentActivityMetrics aggregates one student's activity inside one group.
type StudentActivityMetrics struct {
	TotalActivities int        `json:"total_activities"`
	TotalEffort     float64    `json:"total_effort"`
	AvgEffort       float64    `json:"avg_effort"`
	ActiveDays      int        `json:"active_days"`
	FirstActivity   *time.Time `json:"first_activity"`
	LastActivity    *time.Time `json:"last_activity"`
	Creates         int        `json:"creates"`
	Updates         int        `json:"updates"`
	Comments        int        `json:"comments"`
}

// PeerFeedbackSummary averages the reviews a student received.
// Score fields are null when no feedback exists.
type PeerFeedbackSummary struct {
	AvgContribution  *float64 `json:"avg_contribution"`
	AvgQuality       *float64 `json:"avg_quality"`
	AvgCollaboration *float64 `json:"avg_collaboration"`
	FeedbackCount    int      `json:"feedback_count"`
}

// ReportMember is a student row inside a report group.
type ReportMember struct {
	StudentID       string                 `json:"student_id"`
	StudentName     string                 `json:"student_name"`
	Email           string                 `json:"email"`
	ActivityMetrics StudentActivityMetrics `json:"activity_metrics"`
	PeerFeedback    PeerFeedbackSummary    `json:"peer_feedback"`
}

// GroupStatistics summarises effort spread across a group.
type GroupStatistics struct {
	AvgEffort      float64 `json:"avg_effort"`
	MaxEffort      float64 `json:"max_effort"`
	MinEffort      float64 `json:"min_effort"`
	EffortVariance float64 `json:"effort_variance"`
	ImbalanceRatio float64 `json:"imbalance_ratio"`
}

// ContributionIssue is a rule-based warning about a single student.
type ContributionIssue struct {
	StudentID string `json:"student_id"`
	Student   string `json:"student"`
	Type      string `json:"type"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
}

// ReportGroup is one group's section of the contribution report.
type ReportGroup struct {
	GroupID    string              `json:"group_id"`
	GroupName  string              `json:"group_name"`
	Members    []ReportMember      `json:"members"`
	Statistics GroupStatistics     `json:"statistics"`
	Issues     []ContributionIssue `json:"issues"`
}

// ContributionReport is the full per-project contribution analysis.
type ContributionReport struct {
	Project     ProjectResponse `json:"project"`
	Groups      []ReportGroup   `json:"groups"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// AlertCreateRequest captures a manually raised alert.
type AlertCreateRequest struct {
	ProjectID string  `json:"project_id" validate:"required"`
	GroupID   string  `json:"group_id" validate:"required"`
	StudentID *string `json:"student_id" validate:"omitempty,min=1"`
	AlertType string  `json:"alert_type" validate:"required,min=1,max=64"`
	Severity  string  `json:"severity" validate:"required,oneof=low medium high"`
	Message   string  `json:"message" validate:"required,min=1,max=2000"`
}

// AlertResponse serialises a persisted alert.
type AlertResponse struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	GroupID     string     `json:"group_id"`
	StudentID   *string    `json:"student_id"`
	StudentName string     `json:"student_name,omitempty"`
	AlertType   string     `json:"alert_type"`
	Severity    string     `json:"severity"`
	Message     string     `json:"message"`
	IsResolved  bool       `json:"is_resolved"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at"`
}

// NewAlertResponse converts an alert model into a DTO.
func NewAlertResponse(alert models.Alert) AlertResponse {
	response := AlertResponse{
		ID:         alert.ID,
		ProjectID:  alert.ProjectID,
		GroupID:    alert.GroupID,
		StudentID:  alert.StudentID,
		AlertType:  alert.AlertType,
		Severity:   alert.Severity,
		Message:    alert.Message,
		IsResolved: alert.IsResolved,
		CreatedAt:  alert.CreatedAt,
		ResolvedAt: alert.ResolvedAt,
	}
	if alert.Student != nil {
		response.StudentName = alert.Student.Name
	}
	return response
}

// NewAlertResponseSlice converts alert models into DTOs.
func NewAlertResponseSlice(alerts []models.Alert) []AlertResponse {
	result := make([]AlertResponse, 0, len(alerts))
	for _, alert := range alerts {
		result = append(result, NewAlertResponse(alert))
	}
	return result
}

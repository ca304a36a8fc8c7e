package dto

import (
	"time"

	"github.com/noah-isme/fairshare-api/internal/models"
)

// DateLayout is the calendar date format accepted for project and milestone dates.
const DateLayout = "2006-01-02"

// MilestoneCreateRequest describes a milestone created alongside a project.
type MilestoneCreateRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description string  `json:"description" validate:"omitempty,max=5000"`
	DueDate     string  `json:"due_date" validate:"required,datetime=2006-01-02"`
	Weight      float64 `json:"weight" validate:"omitempty,gt=0"`
}

// GroupCreateRequest describes a group and its initial student members.
type GroupCreateRequest struct {
	Name    string   `json:"name" validate:"required,min=1,max=255"`
	Members []string `json:"members" validate:"omitempty,dive,required"`
}

// ProjectCreateRequest captures a faculty request to create a project.
type ProjectCreateRequest struct {
	Title       string                   `json:"title" validate:"required,min=1,max=255"`
	Description string                   `json:"description" validate:"omitempty,max=10000"`
	StartDate   string                   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string                   `json:"end_date" validate:"required,datetime=2006-01-02"`
	Milestones  []MilestoneCreateRequest `json:"milestones" validate:"omitempty,dive"`
	Groups      []GroupCreateRequest     `json:"groups" validate:"omitempty,dive"`
}

// ProjectResponse serialises the project record.
type ProjectResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FacultyID   string    `json:"faculty_id"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// MilestoneResponse serialises a milestone.
type MilestoneResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     string  `json:"due_date"`
	Weight      float64 `json:"weight"`
}

// GroupResponse serialises a group with its members.
type GroupResponse struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Members []StudentSummary `json:"members"`
}

// ProjectDetailResponse is the project with milestones and groups.
type ProjectDetailResponse struct {
	ProjectResponse
	Milestones []MilestoneResponse `json:"milestones"`
	Groups     []GroupResponse     `json:"groups"`
}

// NewProjectResponse converts a project model into a DTO.
func NewProjectResponse(project models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		FacultyID:   project.FacultyID,
		StartDate:   project.StartDate.Format(DateLayout),
		EndDate:     project.EndDate.Format(DateLayout),
		Status:      project.Status,
		CreatedAt:   project.CreatedAt,
	}
}

// NewProjectResponseSlice converts project models into DTOs.
func NewProjectResponseSlice(projects []models.Project) []ProjectResponse {
	result := make([]ProjectResponse, 0, len(projects))
	for _, project := range projects {
		result = append(result, NewProjectResponse(project))
	}
	return result
}

// NewProjectDetailResponse converts a fully loaded project into its detail DTO.
func NewProjectDetailResponse(project models.Project) ProjectDetailResponse {
	milestones := make([]MilestoneResponse, 0, len(project.Milestones))
	for _, milestone := range project.Milestones {
		milestones = append(milestones, MilestoneResponse{
			ID:          milestone.ID,
			Title:       milestone.Title,
			Description: milestone.Description,
			DueDate:     milestone.DueDate.Format(DateLayout),
			Weight:      milestone.Weight,
		})
	}

	groups := make([]GroupResponse, 0, len(project.Groups))
	for _, group := range project.Groups {
		members := make([]StudentSummary, 0, len(group.Members))
		for _, member := range group.Members {
			members = append(members, StudentSummary{
				ID:    member.StudentID,
				Name:  member.Student.Name,
				Email: member.Student.Email,
			})
		}
		groups = append(groups, GroupResponse{ID: group.ID, Name: group.Name, Members: members})
	}

	return ProjectDetailResponse{
		ProjectResponse: NewProjectResponse(project),
		Milestones:      milestones,
		Groups:          groups,
	}
}

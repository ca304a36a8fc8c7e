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

// ProjectService manages projects, their milestones and groups.
type ProjectService interface {
	Create(ctx context.Context, facultyID string, payload dto.ProjectCreateRequest) (dto.ProjectDetailResponse, error)
	List(ctx context.Context, userID, role string) ([]dto.ProjectResponse, error)
	Get(ctx context.Context, id string) (dto.ProjectDetailResponse, error)
	ListStudents(ctx context.Context) ([]dto.StudentSummary, error)
}

type projectService struct {
	projects  repository.ProjectRepository
	users     repository.UserRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewProjectService constructs the project service.
func NewProjectService(projects repository.ProjectRepository, users repository.UserRepository, validator *validator.Validate, logger zerolog.Logger) ProjectService {
	return &projectService{
		projects:  projects,
		users:     users,
		validator: validator,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "project_service").Logger(),
	}
}

func (s *projectService) Create(ctx context.Context, facultyID string, payload dto.ProjectCreateRequest) (dto.ProjectDetailResponse, error) {
	payload.Title = strings.TrimSpace(payload.Title)
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProjectDetailResponse{}, err
	}

	start, err := time.Parse(dto.DateLayout, payload.StartDate)
	if err != nil {
		return dto.ProjectDetailResponse{}, invalidInput("start_date must use YYYY-MM-DD")
	}
	end, err := time.Parse(dto.DateLayout, payload.EndDate)
	if err != nil {
		return dto.ProjectDetailResponse{}, invalidInput("end_date must use YYYY-MM-DD")
	}
	if end.Before(start) {
		return dto.ProjectDetailResponse{}, invalidInput("end_date must not precede start_date")
	}

	project := models.Project{
		Title:       payload.Title,
		Description: s.sanitizer.Sanitize(strings.TrimSpace(payload.Description)),
		FacultyID:   facultyID,
		StartDate:   start,
		EndDate:     end,
		Status:      models.ProjectStatusActive,
	}

	for _, milestone := range payload.Milestones {
		due, err := time.Parse(dto.DateLayout, milestone.DueDate)
		if err != nil {
			return dto.ProjectDetailResponse{}, invalidInput("milestone due_date must use YYYY-MM-DD")
		}
		project.Milestones = append(project.Milestones, models.Milestone{
			Title:       strings.TrimSpace(milestone.Title),
			Description: s.sanitizer.Sanitize(strings.TrimSpace(milestone.Description)),
			DueDate:     due,
			Weight:      milestone.Weight,
		})
	}

	groups, err := s.buildGroups(ctx, payload.Groups)
	if err != nil {
		return dto.ProjectDetailResponse{}, err
	}
	project.Groups = groups

	if err := s.projects.Create(ctx, &project); err != nil {
		return dto.ProjectDetailResponse{}, err
	}

	s.logger.Info().
		Str("project_id", project.ID).
		Str("faculty_id", facultyID).
		Int("groups", len(project.Groups)).
		Msg("project created")

	return s.Get(ctx, project.ID)
}

func (s *projectService) buildGroups(ctx context.Context, payload []dto.GroupCreateRequest) ([]models.Group, error) {
	if len(payload) == 0 {
		return nil, nil
	}

	requested := make([]string, 0)
	seen := make(map[string]struct{})
	for _, group := range payload {
		for _, member := range group.Members {
			member = strings.TrimSpace(member)
			if _, ok := seen[member]; ok {
				continue
			}
			seen[member] = struct{}{}
			requested = append(requested, member)
		}
	}

	students := make(map[string]struct{})
	if len(requested) > 0 {
		users, err := s.users.ListByIDs(ctx, requested)
		if err != nil {
			return nil, err
		}
		for _, user := range users {
			if user.Role == models.RoleStudent {
				students[user.ID] = struct{}{}
			}
		}
	}

	groups := make([]models.Group, 0, len(payload))
	for _, group := range payload {
		model := models.Group{Name: strings.TrimSpace(group.Name)}
		added := make(map[string]struct{})
		for _, member := range group.Members {
			member = strings.TrimSpace(member)
			if _, ok := students[member]; !ok {
				return nil, invalidInput("member %s is not a registered student", member)
			}
			if _, dup := added[member]; dup {
				continue
			}
			added[member] = struct{}{}
			model.Members = append(model.Members, models.GroupMember{StudentID: member})
		}
		groups = append(groups, model)
	}

	return groups, nil
}

// List returns the caller's projects: owned ones for faculty, joined ones for students.
func (s *projectService) List(ctx context.Context, userID, role string) ([]dto.ProjectResponse, error) {
	var (
		projects []models.Project
		err      error
	)

	switch role {
	case models.RoleFaculty:
		projects, err = s.projects.ListByFaculty(ctx, userID)
	case models.RoleStudent:
		projects, err = s.projects.ListByStudent(ctx, userID)
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	return dto.NewProjectResponseSlice(projects), nil
}

func (s *projectService) Get(ctx context.Context, id string) (dto.ProjectDetailResponse, error) {
	project, err := s.projects.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectDetailResponse{}, ErrProjectNotFound
		}
		return dto.ProjectDetailResponse{}, err
	}
	return dto.NewProjectDetailResponse(project), nil
}

func (s *projectService) ListStudents(ctx context.Context) ([]dto.StudentSummary, error) {
	users, err := s.users.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewStudentSummarySlice(users), nil
}

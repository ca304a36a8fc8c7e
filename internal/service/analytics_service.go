package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/fairshare-api/internal/dto"
	"github.com/noah-isme/fairshare-api/internal/models"
	"github.com/noah-isme/fairshare-api/internal/observability"
	"github.com/noah-isme/fairshare-api/internal/repository"
)

// AnalyticsService produces contribution reports and manages faculty alerts.
type AnalyticsService interface {
	ContributionReport(ctx context.Context, projectID string) (dto.ContributionReport, error)
	ListOpenAlerts(ctx context.Context, projectID string) ([]dto.AlertResponse, error)
	CreateAlert(ctx context.Context, payload dto.AlertCreateRequest) (dto.AlertResponse, error)
	ResolveAlert(ctx context.Context, id string) (dto.AlertResponse, error)
}

type analyticsService struct {
	projects  repository.ProjectRepository
	activity  repository.ActivityLogRepository
	feedback  repository.FeedbackRepository
	alerts    repository.AlertRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAnalyticsService constructs the analytics service.
func NewAnalyticsService(
	projects repository.ProjectRepository,
	activity repository.ActivityLogRepository,
	feedback repository.FeedbackRepository,
	alerts repository.AlertRepository,
	validator *validator.Validate,
	logger zerolog.Logger,
) AnalyticsService {
	return &analyticsService{
		projects:  projects,
		activity:  activity,
		feedback:  feedback,
		alerts:    alerts,
		validator: validator,
		logger:    logger.With().Str("component", "analytics_service").Logger(),
		now:       time.Now,
	}
}

func (s *analyticsService) ContributionReport(ctx context.Context, projectID string) (dto.ContributionReport, error) {
	tracer := otel.Tracer("github.com/noah-isme/fairshare-api/internal/service/analytics")
	ctx, span := tracer.Start(ctx, "analytics.contribution_report",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("analytics.project_id", projectID)),
	)
	defer span.End()

	started := time.Now()
	defer func() {
		observability.ReportGeneration().Observe(time.Since(started).Seconds())
	}()

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "project_not_found")
			return dto.ContributionReport{}, ErrProjectNotFound
		}
		span.SetStatus(codes.Error, "project_lookup_failed")
		return dto.ContributionReport{}, err
	}

	memberships, err := s.projects.ListMemberships(ctx, projectID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_memberships_failed")
		return dto.ContributionReport{}, err
	}

	totals, err := s.activity.AggregateByMember(ctx, projectID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregate_activity_failed")
		return dto.ContributionReport{}, err
	}

	stamps, err := s.activity.ListStamps(ctx, projectID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_activity_stamps_failed")
		return dto.ContributionReport{}, err
	}

	aggregates, err := s.feedback.AggregateByReviewee(ctx, projectID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregate_feedback_failed")
		return dto.ContributionReport{}, err
	}

	report := buildContributionReport(reportInput{
		Project:     project,
		Memberships: memberships,
		Aggregates:  totals,
		Stamps:      stamps,
		Feedback:    aggregates,
		Now:         s.now().UTC(),
	})

	issueCount := 0
	for _, group := range report.Groups {
		for _, issue := range group.Issues {
			observability.ReportIssues().WithLabelValues(issue.Type).Inc()
			issueCount++
		}
	}

	span.SetAttributes(
		attribute.Int("analytics.groups", len(report.Groups)),
		attribute.Int("analytics.activity_rows", len(stamps)),
		attribute.Int("analytics.issues", issueCount),
	)

	s.logger.Debug().
		Str("project_id", projectID).
		Int("groups", len(report.Groups)).
		Int("issues", issueCount).
		Msg("contribution report generated")

	return report, nil
}

func (s *analyticsService) ListOpenAlerts(ctx context.Context, projectID string) ([]dto.AlertResponse, error) {
	if _, err := s.lookupProject(ctx, projectID); err != nil {
		return nil, err
	}

	alerts, err := s.alerts.ListOpen(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return dto.NewAlertResponseSlice(alerts), nil
}

func (s *analyticsService) CreateAlert(ctx context.Context, payload dto.AlertCreateRequest) (dto.AlertResponse, error) {
	payload.AlertType = strings.TrimSpace(payload.AlertType)
	payload.Message = strings.TrimSpace(payload.Message)
	if err := s.validator.Struct(payload); err != nil {
		return dto.AlertResponse{}, err
	}

	if _, err := s.lookupProject(ctx, payload.ProjectID); err != nil {
		return dto.AlertResponse{}, err
	}

	group, err := s.projects.GetGroup(ctx, payload.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AlertResponse{}, ErrGroupNotFound
		}
		return dto.AlertResponse{}, err
	}
	if group.ProjectID != payload.ProjectID {
		return dto.AlertResponse{}, invalidInput("group does not belong to project")
	}

	if payload.StudentID != nil {
		member, err := s.projects.IsGroupMember(ctx, group.ID, *payload.StudentID)
		if err != nil {
			return dto.AlertResponse{}, err
		}
		if !member {
			return dto.AlertResponse{}, invalidInput("student is not a member of the group")
		}
	}

	alert := models.Alert{
		ProjectID: payload.ProjectID,
		GroupID:   payload.GroupID,
		StudentID: payload.StudentID,
		AlertType: payload.AlertType,
		Severity:  payload.Severity,
		Message:   payload.Message,
	}
	if err := s.alerts.Create(ctx, &alert); err != nil {
		return dto.AlertResponse{}, err
	}

	stored, err := s.alerts.GetByID(ctx, alert.ID)
	if err != nil {
		return dto.AlertResponse{}, err
	}

	s.logger.Info().
		Str("alert_id", stored.ID).
		Str("project_id", stored.ProjectID).
		Str("severity", stored.Severity).
		Msg("alert created")

	return dto.NewAlertResponse(stored), nil
}

// ResolveAlert closes an open alert. Resolving a closed alert returns it unchanged.
func (s *analyticsService) ResolveAlert(ctx context.Context, id string) (dto.AlertResponse, error) {
	alert, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AlertResponse{}, ErrAlertNotFound
		}
		return dto.AlertResponse{}, err
	}

	if alert.IsResolved {
		return dto.NewAlertResponse(alert), nil
	}

	if err := s.alerts.MarkResolved(ctx, id, s.now().UTC()); err != nil {
		return dto.AlertResponse{}, err
	}

	resolved, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		return dto.AlertResponse{}, err
	}

	s.logger.Info().Str("alert_id", id).Msg("alert resolved")
	return dto.NewAlertResponse(resolved), nil
}

func (s *analyticsService) lookupProject(ctx context.Context, projectID string) (models.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, ErrProjectNotFound
		}
		return models.Project{}, err
	}
	return project, nil
}

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

// FeedbackService records peer reviews and summarises them per student.
type FeedbackService interface {
	Submit(ctx context.Context, reviewerID string, payload dto.FeedbackSubmitRequest) (dto.FeedbackResponse, error)
	ListByProject(ctx context.Context, projectID string) ([]dto.FeedbackResponse, error)
	StudentSummary(ctx context.Context, viewerID, viewerRole, studentID, projectID string) (dto.FeedbackSummaryResponse, error)
}

type feedbackService struct {
	feedback  repository.FeedbackRepository
	projects  repository.ProjectRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewFeedbackService constructs the feedback service.
func NewFeedbackService(feedback repository.FeedbackRepository, projects repository.ProjectRepository, validator *validator.Validate, logger zerolog.Logger) FeedbackService {
	return &feedbackService{
		feedback:  feedback,
		projects:  projects,
		validator: validator,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "feedback_service").Logger(),
		now:       time.Now,
	}
}

// Submit stores the reviewer's feedback, replacing any earlier review of the same reviewee in the project.
func (s *feedbackService) Submit(ctx context.Context, reviewerID string, payload dto.FeedbackSubmitRequest) (dto.FeedbackResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FeedbackResponse{}, err
	}

	if payload.RevieweeID == reviewerID {
		return dto.FeedbackResponse{}, ErrSelfReview
	}

	group, err := s.projects.GetGroup(ctx, payload.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FeedbackResponse{}, ErrGroupNotFound
		}
		return dto.FeedbackResponse{}, err
	}
	if group.ProjectID != payload.ProjectID {
		return dto.FeedbackResponse{}, invalidInput("group does not belong to project")
	}

	reviewerMember, err := s.projects.IsGroupMember(ctx, group.ID, reviewerID)
	if err != nil {
		return dto.FeedbackResponse{}, err
	}
	if !reviewerMember {
		return dto.FeedbackResponse{}, ErrForbidden
	}

	revieweeMember, err := s.projects.IsGroupMember(ctx, group.ID, payload.RevieweeID)
	if err != nil {
		return dto.FeedbackResponse{}, err
	}
	if !revieweeMember {
		return dto.FeedbackResponse{}, invalidInput("reviewee is not a member of the group")
	}

	record := models.PeerFeedback{
		ProjectID:          payload.ProjectID,
		GroupID:            group.ID,
		ReviewerID:         reviewerID,
		RevieweeID:         payload.RevieweeID,
		ContributionScore:  payload.ContributionScore,
		QualityScore:       payload.QualityScore,
		CollaborationScore: payload.CollaborationScore,
		Comments:           strings.TrimSpace(s.sanitizer.Sanitize(payload.Comments)),
		SubmittedAt:        s.now().UTC(),
	}

	stored, err := s.feedback.Upsert(ctx, &record)
	if err != nil {
		return dto.FeedbackResponse{}, err
	}

	s.logger.Info().
		Str("feedback_id", stored.ID).
		Str("project_id", stored.ProjectID).
		Str("reviewer_id", reviewerID).
		Msg("peer feedback stored")

	return dto.NewFeedbackResponse(stored), nil
}

func (s *feedbackService) ListByProject(ctx context.Context, projectID string) ([]dto.FeedbackResponse, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	items, err := s.feedback.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return dto.NewFeedbackResponseSlice(items), nil
}

// StudentSummary is visible to the student themselves and to faculty.
func (s *feedbackService) StudentSummary(ctx context.Context, viewerID, viewerRole, studentID, projectID string) (dto.FeedbackSummaryResponse, error) {
	if viewerRole != models.RoleFaculty && viewerID != studentID {
		return dto.FeedbackSummaryResponse{}, ErrForbidden
	}

	items, err := s.feedback.ListForReviewee(ctx, projectID, studentID)
	if err != nil {
		return dto.FeedbackSummaryResponse{}, err
	}

	summary := dto.FeedbackSummaryResponse{
		StudentID:     studentID,
		ProjectID:     projectID,
		FeedbackCount: len(items),
	}
	if len(items) == 0 {
		return summary, nil
	}

	var contribution, quality, collaboration float64
	comments := make([]string, 0, len(items))
	for _, item := range items {
		contribution += float64(item.ContributionScore)
		quality += float64(item.QualityScore)
		collaboration += float64(item.CollaborationScore)
		if text := strings.TrimSpace(item.Comments); text != "" {
			comments = append(comments, text)
		}
	}

	count := float64(len(items))
	avgContribution := contribution / count
	avgQuality := quality / count
	avgCollaboration := collaboration / count
	summary.AvgContribution = &avgContribution
	summary.AvgQuality = &avgQuality
	summary.AvgCollaboration = &avgCollaboration
	summary.AllComments = strings.Join(comments, " | ")

	return summary, nil
}

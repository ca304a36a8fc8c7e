package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/fairshare-api/internal/models"
)

// FeedbackRepository persists peer reviews.
type FeedbackRepository interface {
	Upsert(ctx context.Context, feedback *models.PeerFeedback) (models.PeerFeedback, error)
	ListByProject(ctx context.Context, projectID string) ([]models.PeerFeedback, error)
	ListForReviewee(ctx context.Context, projectID, revieweeID string) ([]models.PeerFeedback, error)
	AggregateByReviewee(ctx context.Context, projectID string) ([]models.FeedbackAggregate, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository constructs a feedback repository.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

// Upsert inserts the review or replaces the scores of the existing
// (project, reviewer, reviewee) record, returning the stored row.
func (r *feedbackRepository) Upsert(ctx context.Context, feedback *models.PeerFeedback) (models.PeerFeedback, error) {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "project_id"}, {Name: "reviewer_id"}, {Name: "reviewee_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"group_id", "contribution_score", "quality_score", "collaboration_score", "comments", "submitted_at",
			}),
		}).
		Create(feedback).Error
	if err != nil {
		return models.PeerFeedback{}, err
	}

	var stored models.PeerFeedback
	err = r.db.WithContext(ctx).
		Where("project_id = ? AND reviewer_id = ? AND reviewee_id = ?", feedback.ProjectID, feedback.ReviewerID, feedback.RevieweeID).
		First(&stored).Error
	return stored, err
}

func (r *feedbackRepository) ListByProject(ctx context.Context, projectID string) ([]models.PeerFeedback, error) {
	var items []models.PeerFeedback
	err := r.db.WithContext(ctx).
		Preload("Reviewer").
		Preload("Reviewee").
		Where("project_id = ?", projectID).
		Order("submitted_at DESC").
		Find(&items).Error
	return items, err
}

func (r *feedbackRepository) ListForReviewee(ctx context.Context, projectID, revieweeID string) ([]models.PeerFeedback, error) {
	var items []models.PeerFeedback
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND reviewee_id = ?", projectID, revieweeID).
		Order("submitted_at ASC").
		Find(&items).Error
	return items, err
}

// AggregateByReviewee averages each score dimension per reviewee within the project.
func (r *feedbackRepository) AggregateByReviewee(ctx context.Context, projectID string) ([]models.FeedbackAggregate, error) {
	var rows []models.FeedbackAggregate
	err := r.db.WithContext(ctx).
		Model(&models.PeerFeedback{}).
		Select("reviewee_id, AVG(contribution_score) AS avg_contribution, AVG(quality_score) AS avg_quality, AVG(collaboration_score) AS avg_collaboration, COUNT(*) AS feedback_count").
		Where("project_id = ?", projectID).
		Group("reviewee_id").
		Scan(&rows).Error
	return rows, err
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/fairshare-api/internal/dto"
	"github.com/noah-isme/fairshare-api/internal/models"
	"github.com/noah-isme/fairshare-api/internal/repository"
)

type feedbackFixture struct {
	db       *gorm.DB
	svc      FeedbackService
	project  models.Project
	group    models.Group
	other    models.Group
	faculty  models.User
	alice    models.User
	bob      models.User
	outsider models.User
}

func newFeedbackFixture(t *testing.T) feedbackFixture {
	t.Helper()
	db := newTestDB(t)
	faculty := seedUser(t, db, "Dr Grey", models.RoleFaculty)
	alice := seedUser(t, db, "Alice", models.RoleStudent)
	bob := seedUser(t, db, "Bob", models.RoleStudent)
	outsider := seedUser(t, db, "Omar", models.RoleStudent)
	project, groups := seedProject(t, db, faculty.ID, map[string][]string{
		"Team Red":  {alice.ID, bob.ID},
		"Team Blue": {outsider.ID},
	})

	svc := NewFeedbackService(repository.NewFeedbackRepository(db), repository.NewProjectRepository(db), newTestValidator(), testLogger())
	return feedbackFixture{
		db:       db,
		svc:      svc,
		project:  project,
		group:    groups["Team Red"],
		other:    groups["Team Blue"],
		faculty:  faculty,
		alice:    alice,
		bob:      bob,
		outsider: outsider,
	}
}

func (f feedbackFixture) review(reviewee string, score int, comments string) dto.FeedbackSubmitRequest {
	return dto.FeedbackSubmitRequest{
		ProjectID:          f.project.ID,
		GroupID:            f.group.ID,
		RevieweeID:         reviewee,
		ContributionScore:  score,
		QualityScore:       score,
		CollaborationScore: score,
		Comments:           comments,
	}
}

func TestFeedbackServiceRejectsSelfReview(t *testing.T) {
	f := newFeedbackFixture(t)

	_, err := f.svc.Submit(context.Background(), f.alice.ID, f.review(f.alice.ID, 5, "I did everything"))
	require.ErrorIs(t, err, ErrSelfReview)
	require.ErrorIs(t, err, ErrInvalidInput)

	var count int64
	require.NoError(t, f.db.Model(&models.PeerFeedback{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestFeedbackServiceUpsertKeepsSingleRecord(t *testing.T) {
	f := newFeedbackFixture(t)
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, f.alice.ID, f.review(f.bob.ID, 2, "slow start"))
	require.NoError(t, err)

	second, err := f.svc.Submit(ctx, f.alice.ID, f.review(f.bob.ID, 4, "<i>much better</i>"))
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 4, second.ContributionScore)
	require.Equal(t, "much better", second.Comments)

	var count int64
	require.NoError(t, f.db.Model(&models.PeerFeedback{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestFeedbackServiceValidatesMembership(t *testing.T) {
	f := newFeedbackFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.outsider.ID, f.review(f.bob.ID, 3, ""))
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Submit(ctx, f.alice.ID, f.review(f.outsider.ID, 3, ""))
	require.ErrorIs(t, err, ErrInvalidInput)

	payload := f.review(f.bob.ID, 3, "")
	payload.GroupID = "missing"
	_, err = f.svc.Submit(ctx, f.alice.ID, payload)
	require.ErrorIs(t, err, ErrGroupNotFound)

	payload = f.review(f.bob.ID, 6, "")
	_, err = f.svc.Submit(ctx, f.alice.ID, payload)
	require.Error(t, err)
}

func TestFeedbackServiceStudentSummary(t *testing.T) {
	f := newFeedbackFixture(t)
	ctx := context.Background()

	empty, err := f.svc.StudentSummary(ctx, f.bob.ID, models.RoleStudent, f.bob.ID, f.project.ID)
	require.NoError(t, err)
	require.Nil(t, empty.AvgContribution)
	require.Zero(t, empty.FeedbackCount)

	_, err = f.svc.Submit(ctx, f.alice.ID, f.review(f.bob.ID, 4, "reliable"))
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, f.bob.ID, f.review(f.alice.ID, 2, "quiet"))
	require.NoError(t, err)

	summary, err := f.svc.StudentSummary(ctx, f.faculty.ID, models.RoleFaculty, f.bob.ID, f.project.ID)
	require.NoError(t, err)
	require.Equal(t, 1, summary.FeedbackCount)
	require.Equal(t, 4.0, *summary.AvgContribution)
	require.Equal(t, "reliable", summary.AllComments)

	_, err = f.svc.StudentSummary(ctx, f.alice.ID, models.RoleStudent, f.bob.ID, f.project.ID)
	require.ErrorIs(t, err, ErrForbidden)

	listed, err := f.svc.ListByProject(ctx, f.project.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	_, err = f.svc.ListByProject(ctx, "missing")
	require.ErrorIs(t, err, ErrProjectNotFound)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/fairshare-api/internal/dto"
	"github.com/noah-isme/fairshare-api/internal/models"
	"github.com/noah-isme/fairshare-api/internal/repository"
)

type memoryActivityRepo struct {
	repository.ActivityLogRepository
	entries    []models.ActivityLog
	failErr    error
	lastFilter repository.ActivityLogFilter
}

func (m *memoryActivityRepo) Create(_ context.Context, entry *models.ActivityLog) error {
	if m.failErr != nil {
		return m.failErr
	}
	for _, existing := range m.entries {
		if existing.ID == entry.ID {
			return gorm.ErrDuplicatedKey
		}
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(_ context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, error) {
	m.lastFilter = filter
	return append([]models.ActivityLog(nil), m.entries...), nil
}

func (m *memoryActivityRepo) ListByProject(_ context.Context, projectID string) ([]models.ActivityLog, error) {
	result := make([]models.ActivityLog, 0)
	for _, entry := range m.entries {
		if entry.ProjectID == projectID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type memoryUserRepo struct {
	repository.UserRepository
	users map[string]models.User
}

func (m *memoryUserRepo) ListByIDs(_ context.Context, ids []string) ([]models.User, error) {
	result := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			result = append(result, user)
		}
	}
	return result, nil
}

func newRecorder(repo *memoryActivityRepo, opts ActivityServiceOptions) *activityService {
	svc := NewActivityService(repo, &memoryUserRepo{}, opts, testLogger()).(*activityService)
	svc.now = func() time.Time { return reportNow }
	return svc
}

func startNATS(t *testing.T) *natsserver.Server {
	t.Helper()
	server, err := natsserver.NewServer(&natsserver.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	})
	require.NoError(t, err)

	go server.Start()
	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("nats server not ready")
	}

	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})
	return server
}

func TestActivityServiceRecordDefaultsEffort(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := newRecorder(repo, ActivityServiceOptions{})

	svc.Record(context.Background(), ActivityEntry{
		UserID:       "u1",
		ProjectID:    "p1",
		GroupID:      "g1",
		ActivityType: "Create",
		EntityType:   "task",
		EntityID:     "t1",
		Description:  "Created task: Draft",
	})

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	require.NotEmpty(t, entry.ID)
	require.Equal(t, DefaultEffortScore, entry.EffortScore)
	require.Equal(t, models.ActivityTypeCreate, entry.ActivityType)
	require.Equal(t, reportNow, entry.Timestamp)
	require.Nil(t, entry.Metadata)
}

func TestActivityServiceRecordKeepsExplicitZeroEffort(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := newRecorder(repo, ActivityServiceOptions{})

	svc.Record(context.Background(), ActivityEntry{UserID: "u1", ProjectID: "p1", ActivityType: models.ActivityTypeComment, EffortScore: Weight(0)})
	svc.Record(context.Background(), ActivityEntry{UserID: "u1", ProjectID: "p1", ActivityType: models.ActivityTypeComment, EffortScore: Weight(-3)})

	require.Len(t, repo.entries, 2)
	require.Zero(t, repo.entries[0].EffortScore)
	require.Equal(t, DefaultEffortScore, repo.entries[1].EffortScore)
}

func TestActivityServiceRecordAbsorbsFailureWithoutQueue(t *testing.T) {
	repo := &memoryActivityRepo{failErr: errors.New("disk full")}
	svc := newRecorder(repo, ActivityServiceOptions{})

	require.NotPanics(t, func() {
		svc.Record(context.Background(), ActivityEntry{UserID: "u1", ProjectID: "p1", ActivityType: models.ActivityTypeComment})
	})
	require.Empty(t, repo.entries)

	replayed, err := svc.ReplayPending(context.Background())
	require.NoError(t, err)
	require.Zero(t, replayed)
}

func TestActivityServiceQueuesFailedWritesForReplay(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	repo := &memoryActivityRepo{failErr: errors.New("connection reset")}
	svc := newRecorder(repo, ActivityServiceOptions{Redis: client, EventsPrefix: "fs"})

	svc.Record(context.Background(), ActivityEntry{
		UserID:       "u1",
		ProjectID:    "p1",
		GroupID:      "g1",
		ActivityType: models.ActivityTypeUpdate,
		EffortScore:  Weight(EffortTaskCompleted),
		Metadata:     map[string]interface{}{"old_status": "todo", "new_status": "completed"},
	})
	require.Empty(t, repo.entries)

	queued, err := server.List("fs:activity:retry")
	require.NoError(t, err)
	require.Len(t, queued, 1)

	repo.failErr = nil
	replayed, err := svc.ReplayPending(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, replayed)
	require.Len(t, repo.entries, 1)
	require.Equal(t, EffortTaskCompleted, repo.entries[0].EffortScore)
	require.True(t, repo.entries[0].Timestamp.Equal(reportNow))
	require.Equal(t, "completed", repo.entries[0].Metadata["new_status"])
	require.False(t, server.Exists("fs:activity:retry"))
}

func TestActivityServiceReplayDropsStoredEntries(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	stored := models.ActivityLog{ID: "a1", UserID: "u1", ProjectID: "p1", ActivityType: models.ActivityTypeCreate, EffortScore: 2, Timestamp: reportNow}
	repo := &memoryActivityRepo{entries: []models.ActivityLog{stored}}
	svc := newRecorder(repo, ActivityServiceOptions{Redis: client})

	payload, err := json.Marshal(stored)
	require.NoError(t, err)
	_, err = server.Lpush("fairshare:activity:retry", string(payload))
	require.NoError(t, err)

	replayed, err := svc.ReplayPending(context.Background())
	require.NoError(t, err)
	require.Zero(t, replayed)
	require.Len(t, repo.entries, 1)
	require.False(t, server.Exists("fairshare:activity:retry"))
}

func TestActivityServicePublishesRecordedEntries(t *testing.T) {
	server := startNATS(t)

	conn, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	defer conn.Close()

	sub, err := conn.SubscribeSync("fairshare.activity.comment")
	require.NoError(t, err)
	require.NoError(t, conn.Flush())

	repo := &memoryActivityRepo{}
	svc := newRecorder(repo, ActivityServiceOptions{NATS: conn})
	svc.Record(context.Background(), ActivityEntry{
		UserID:       "u1",
		ProjectID:    "p1",
		GroupID:      "g1",
		ActivityType: models.ActivityTypeComment,
		EntityType:   "comment",
		EntityID:     "c1",
		Description:  "Commented: looks good",
		EffortScore:  Weight(EffortComment),
	})

	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)

	var event dto.ActivityResponse
	require.NoError(t, json.Unmarshal(msg.Data, &event))
	require.Equal(t, repo.entries[0].ID, event.ID)
	require.Equal(t, "c1", event.EntityID)
	require.Equal(t, EffortComment, event.EffortScore)
}

func TestActivityServiceListClampsLimit(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := newRecorder(repo, ActivityServiceOptions{})

	_, err := svc.List(context.Background(), dto.ActivityListRequest{ProjectID: "p1"})
	require.NoError(t, err)
	require.Equal(t, defaultActivityLimit, repo.lastFilter.Limit)

	_, err = svc.List(context.Background(), dto.ActivityListRequest{ProjectID: "p1", Limit: 10000, GroupID: " g1 "})
	require.NoError(t, err)
	require.Equal(t, maxActivityLimit, repo.lastFilter.Limit)
	require.Equal(t, "g1", repo.lastFilter.GroupID)
}

func TestActivityServiceSummaryOrdersByEffort(t *testing.T) {
	repo := &memoryActivityRepo{entries: []models.ActivityLog{
		{ID: "1", UserID: "u1", ProjectID: "p1", EffortScore: 1, Timestamp: reportNow.Add(-48 * time.Hour)},
		{ID: "2", UserID: "u2", ProjectID: "p1", EffortScore: 5, Timestamp: reportNow.Add(-24 * time.Hour)},
		{ID: "3", UserID: "u1", ProjectID: "p1", EffortScore: 1, Timestamp: reportNow},
		{ID: "4", UserID: "u3", ProjectID: "other", EffortScore: 9, Timestamp: reportNow},
	}}
	users := &memoryUserRepo{users: map[string]models.User{
		"u1": {ID: "u1", Name: "Alice"},
		"u2": {ID: "u2", Name: "Bob"},
	}}
	svc := NewActivityService(repo, users, ActivityServiceOptions{}, testLogger())

	summary, err := svc.Summary(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, summary, 2)
	require.Equal(t, "Bob", summary[0].UserName)
	require.Equal(t, 5.0, summary[0].TotalEffort)
	require.Equal(t, "Alice", summary[1].UserName)
	require.Equal(t, 2, summary[1].ActivityCount)
	require.Equal(t, 2, summary[1].ActiveDays)
	require.True(t, summary[1].FirstActivity.Equal(reportNow.Add(-48*time.Hour)))
	require.True(t, summary[1].LastActivity.Equal(reportNow))
}

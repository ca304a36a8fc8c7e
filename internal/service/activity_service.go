package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/fairshare-api/internal/dto"
	"github.com/noah-isme/fairshare-api/internal/models"
	"github.com/noah-isme/fairshare-api/internal/observability"
	"github.com/noah-isme/fairshare-api/internal/repository"
)

// Effort weights attached to tracked actions.
const (
	DefaultEffortScore  = 1.0
	EffortTaskCreated   = 2.0
	EffortTaskCompleted = 5.0
	EffortStatusChanged = 1.5
	EffortComment       = 1.0
)

const (
	defaultActivityLimit = 100
	maxActivityLimit     = 500
)

// ActivityEntry captures the details required to append an activity log entry.
// A nil or negative EffortScore records DefaultEffortScore; an explicit zero is kept.
type ActivityEntry struct {
	UserID       string
	ProjectID    string
	GroupID      string
	ActivityType string
	EntityType   string
	EntityID     string
	Description  string
	EffortScore  *float64
	Metadata     map[string]interface{}
}

// Weight returns a pointer to an effort weight for ActivityEntry.EffortScore.
func Weight(value float64) *float64 {
	return &value
}

func (e ActivityEntry) effort() float64 {
	if e.EffortScore == nil || *e.EffortScore < 0 {
		return DefaultEffortScore
	}
	return *e.EffortScore
}

// ActivityRecorder appends activity entries without ever failing the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry)
}

// ActivityService records and queries the project activity trail.
type ActivityService interface {
	ActivityRecorder
	ReplayPending(ctx context.Context) (int, error)
	List(ctx context.Context, req dto.ActivityListRequest) ([]dto.ActivityResponse, error)
	UserTimeline(ctx context.Context, userID, projectID string) ([]dto.ActivityResponse, error)
	Summary(ctx context.Context, projectID string) ([]dto.ActivitySummaryItem, error)
}

// ActivityServiceOptions wires the optional retry queue and event bus.
type ActivityServiceOptions struct {
	Redis        *redis.Client
	NATS         *nats.Conn
	EventsPrefix string
	LimitMax     int
}

type activityService struct {
	repo       repository.ActivityLogRepository
	users      repository.UserRepository
	redis      *redis.Client
	retryQueue string
	nats       *nats.Conn
	subject    string
	limitMax   int
	logger     zerolog.Logger
	now        func() time.Time
}

// NewActivityService constructs the activity service.
func NewActivityService(repo repository.ActivityLogRepository, users repository.UserRepository, opts ActivityServiceOptions, logger zerolog.Logger) ActivityService {
	prefix := strings.TrimSpace(opts.EventsPrefix)
	if prefix == "" {
		prefix = "fairshare"
	}
	limitMax := opts.LimitMax
	if limitMax <= 0 {
		limitMax = maxActivityLimit
	}

	return &activityService{
		repo:       repo,
		users:      users,
		redis:      opts.Redis,
		retryQueue: prefix + ":activity:retry",
		nats:       opts.NATS,
		subject:    strings.ReplaceAll(prefix, ":", ".") + ".activity",
		limitMax:   limitMax,
		logger:     logger.With().Str("component", "activity_service").Logger(),
		now:        time.Now,
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) {
	model := models.ActivityLog{
		ID:           uuid.NewString(),
		UserID:       entry.UserID,
		ProjectID:    entry.ProjectID,
		GroupID:      entry.GroupID,
		ActivityType: strings.ToLower(strings.TrimSpace(entry.ActivityType)),
		EntityType:   strings.ToLower(strings.TrimSpace(entry.EntityType)),
		EntityID:     entry.EntityID,
		Description:  entry.Description,
		Metadata:     toJSONMap(entry.Metadata),
		EffortScore:  entry.effort(),
		Timestamp:    s.now().UTC(),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().
			Err(err).
			Str("activity_id", model.ID).
			Str("activity_type", model.ActivityType).
			Str("project_id", model.ProjectID).
			Msg("failed to persist activity log")
		s.enqueueRetry(ctx, model)
		return
	}

	observability.ActivityRecorded().WithLabelValues(model.ActivityType).Inc()
	s.publish(model)
}

func (s *activityService) enqueueRetry(ctx context.Context, model models.ActivityLog) {
	if s.redis == nil {
		observability.ActivityFailures().WithLabelValues("dropped").Inc()
		return
	}

	payload, err := json.Marshal(model)
	if err != nil {
		observability.ActivityFailures().WithLabelValues("dropped").Inc()
		s.logger.Error().Err(err).Str("activity_id", model.ID).Msg("failed to encode activity for retry")
		return
	}

	// The request context may already be the reason the insert failed.
	queueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := s.redis.RPush(queueCtx, s.retryQueue, payload).Err(); err != nil {
		observability.ActivityFailures().WithLabelValues("dropped").Inc()
		s.logger.Error().Err(err).Str("activity_id", model.ID).Msg("failed to queue activity for retry")
		return
	}

	observability.ActivityFailures().WithLabelValues("queued").Inc()
	s.logger.Warn().Str("activity_id", model.ID).Msg("activity queued for retry")
}

func (s *activityService) publish(model models.ActivityLog) {
	if s.nats == nil {
		return
	}

	payload, err := json.Marshal(dto.NewActivityResponse(model))
	if err != nil {
		s.logger.Warn().Err(err).Str("activity_id", model.ID).Msg("failed to encode activity event")
		return
	}

	subject := s.subject + "." + model.ActivityType
	if err := s.nats.Publish(subject, payload); err != nil {
		s.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish activity event")
	}
}

// ReplayPending drains the retry queue, re-inserting entries with their original id and timestamp.
// Entries that already exist are dropped. It stops at the first storage failure and requeues that entry.
func (s *activityService) ReplayPending(ctx context.Context) (int, error) {
	if s.redis == nil {
		return 0, nil
	}

	replayed := 0
	for {
		raw, err := s.redis.LPop(ctx, s.retryQueue).Bytes()
		if errors.Is(err, redis.Nil) {
			return replayed, nil
		}
		if err != nil {
			return replayed, err
		}

		var model models.ActivityLog
		if err := json.Unmarshal(raw, &model); err != nil {
			s.logger.Error().Err(err).Msg("discarding undecodable queued activity")
			continue
		}

		if err := s.repo.Create(ctx, &model); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			if pushErr := s.redis.LPush(ctx, s.retryQueue, raw).Err(); pushErr != nil {
				s.logger.Error().Err(pushErr).Str("activity_id", model.ID).Msg("failed to requeue activity")
			}
			return replayed, err
		}

		replayed++
		observability.ActivityReplayed().Inc()
		s.publish(model)
	}
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) ([]dto.ActivityResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > s.limitMax {
		limit = s.limitMax
	}

	entries, err := s.repo.List(ctx, repository.ActivityLogFilter{
		ProjectID: req.ProjectID,
		GroupID:   strings.TrimSpace(req.GroupID),
		UserID:    strings.TrimSpace(req.UserID),
		Since:     req.Since,
		Until:     req.Until,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewActivityResponseSlice(entries), nil
}

func (s *activityService) UserTimeline(ctx context.Context, userID, projectID string) ([]dto.ActivityResponse, error) {
	entries, err := s.repo.List(ctx, repository.ActivityLogFilter{
		ProjectID: projectID,
		UserID:    userID,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewActivityResponseSlice(entries), nil
}

// Summary aggregates activity per user across the whole project, highest total effort first.
func (s *activityService) Summary(ctx context.Context, projectID string) ([]dto.ActivitySummaryItem, error) {
	entries, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string]*activityAccumulator)
	userIDs := make([]string, 0)
	for _, entry := range entries {
		acc, ok := byUser[entry.UserID]
		if !ok {
			acc = newActivityAccumulator()
			byUser[entry.UserID] = acc
			userIDs = append(userIDs, entry.UserID)
		}
		acc.add(entry)
	}

	users, err := s.users.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, user := range users {
		names[user.ID] = user.Name
	}

	items := make([]dto.ActivitySummaryItem, 0, len(byUser))
	for _, userID := range userIDs {
		metrics := byUser[userID].result()
		items = append(items, dto.ActivitySummaryItem{
			UserID:        userID,
			UserName:      names[userID],
			ActivityCount: metrics.TotalActivities,
			TotalEffort:   metrics.TotalEffort,
			FirstActivity: metrics.FirstActivity,
			LastActivity:  metrics.LastActivity,
			ActiveDays:    metrics.ActiveDays,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].TotalEffort != items[j].TotalEffort {
			return items[i].TotalEffort > items[j].TotalEffort
		}
		return items[i].UserName < items[j].UserName
	})

	return items, nil
}

func toJSONMap(metadata map[string]interface{}) datatypes.JSONMap {
	if len(metadata) == 0 {
		return nil
	}
	result := make(datatypes.JSONMap, len(metadata))
	for key, value := range metadata {
		result[key] = value
	}
	return result
}

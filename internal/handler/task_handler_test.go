package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fairshare-api/internal/dto"
	"github.com/noah-isme/fairshare-api/internal/handler"
	"github.com/noah-isme/fairshare-api/internal/service"
)

type mockTaskService struct {
	actorID string
	taskID  string
	groupID string
	status  string
	comment string
	err     error
}

func (m *mockTaskService) Create(_ context.Context, actorID string, payload dto.TaskCreateRequest) (dto.TaskResponse, error) {
	m.actorID = actorID
	if m.err != nil {
		return dto.TaskResponse{}, m.err
	}
	return dto.TaskResponse{ID: "t-1", GroupID: payload.GroupID, Title: payload.Title, CreatedBy: actorID}, nil
}

func (m *mockTaskService) ListByGroup(_ context.Context, groupID string) ([]dto.TaskResponse, error) {
	m.groupID = groupID
	return []dto.TaskResponse{{ID: "t-1", GroupID: groupID}}, m.err
}

func (m *mockTaskService) UpdateStatus(_ context.Context, actorID, taskID string, payload dto.TaskStatusUpdateRequest) (dto.TaskStatusResponse, error) {
	m.actorID = actorID
	m.taskID = taskID
	m.status = payload.Status
	if m.err != nil {
		return dto.TaskStatusResponse{}, m.err
	}
	completed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return dto.TaskStatusResponse{ID: taskID, Status: payload.Status, CompletedAt: &completed}, nil
}

func (m *mockTaskService) AddComment(_ context.Context, actorID, taskID string, payload dto.CommentCreateRequest) (dto.CommentResponse, error) {
	m.actorID = actorID
	m.taskID = taskID
	m.comment = payload.Content
	if m.err != nil {
		return dto.CommentResponse{}, m.err
	}
	return dto.CommentResponse{ID: "c-1", TaskID: taskID, UserID: actorID, Content: payload.Content}, nil
}

func (m *mockTaskService) ListComments(_ context.Context, taskID string) ([]dto.CommentResponse, error) {
	m.taskID = taskID
	return []dto.CommentResponse{}, m.err
}

func newTaskApp(svc service.TaskService) *fiber.App {
	app := fiber.New()
	handler.NewTaskHandler(svc, zerolog.Nop()).Register(app.Group("/api/tasks", asUser("s-1", "student")))
	return app
}

func TestTaskHandler_CreateAndList(t *testing.T) {
	svc := &mockTaskService{}
	app := newTaskApp(svc)

	resp := perform(t, app, jsonRequest(t, http.MethodPost, "/api/tasks", map[string]string{"group_id": "g-1", "title": "Draft"}))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "s-1", svc.actorID)

	resp = perform(t, app, jsonRequest(t, http.MethodGet, "/api/tasks/group/g-9", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "g-9", svc.groupID)

	var body struct {
		Data []dto.TaskResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data, 1)
}

func TestTaskHandler_UpdateStatus(t *testing.T) {
	svc := &mockTaskService{}
	app := newTaskApp(svc)

	resp := perform(t, app, jsonRequest(t, http.MethodPatch, "/api/tasks/t-4/status", map[string]string{"status": "completed"}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "t-4", svc.taskID)
	require.Equal(t, "completed", svc.status)

	var body struct {
		Data dto.TaskStatusResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.NotNil(t, body.Data.CompletedAt)
}

func TestTaskHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{err: service.ErrTaskNotFound, status: fiber.StatusNotFound},
		{err: fmt.Errorf("%w: comment content is empty", service.ErrInvalidInput), status: fiber.StatusBadRequest},
		{err: service.ErrGroupNotFound, status: fiber.StatusNotFound},
		{err: errors.New("connection reset"), status: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			app := newTaskApp(&mockTaskService{err: tc.err})
			resp := perform(t, app, jsonRequest(t, http.MethodPost, "/api/tasks/t-1/comments", map[string]string{"content": "hi"}))
			require.Equal(t, tc.status, resp.StatusCode)

			var body errorBody
			decodeResponse(t, resp, &body)
			if tc.status == fiber.StatusInternalServerError {
				require.Equal(t, "failed to add comment", body.Error)
				return
			}
			require.Equal(t, tc.err.Error(), body.Error)
		})
	}
}

func TestTaskHandler_CommentsRequireIdentity(t *testing.T) {
	app := fiber.New()
	handler.NewTaskHandler(&mockTaskService{}, zerolog.Nop()).Register(app.Group("/api/tasks"))

	resp := perform(t, app, jsonRequest(t, http.MethodGet, "/api/tasks/t-1/comments", nil))
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

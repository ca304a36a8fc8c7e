package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fairshare-api/internal/dto"
	"github.com/noah-isme/fairshare-api/internal/middleware"
	"github.com/noah-isme/fairshare-api/internal/service"
	"github.com/noah-isme/fairshare-api/internal/utils"
)

// TaskHandler exposes task and comment endpoints.
type TaskHandler struct {
	service service.TaskService
	logger  zerolog.Logger
}

// NewTaskHandler constructs a task handler.
func NewTaskHandler(service service.TaskService, logger zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		service: service,
		logger:  logger.With().Str("component", "task_handler").Logger(),
	}
}

// Register wires task routes.
func (h *TaskHandler) Register(router fiber.Router) {
	authed := middleware.AuthOptions{}

	router.Post("", middleware.WithAuth(h.create, authed))
	router.Get("/group/:groupId", middleware.WithAuth(h.listByGroup, authed))
	router.Patch("/:id/status", middleware.WithAuth(h.updateStatus, authed))
	router.Post("/:id/comments", middleware.WithAuth(h.addComment, authed))
	router.Get("/:id/comments", middleware.WithAuth(h.listComments, authed))
}

func (h *TaskHandler) create(c *fiber.Ctx) error {
	var payload dto.TaskCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	task, err := h.service.Create(withRequestContext(c), userIDFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create task")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "task created", task)
}

func (h *TaskHandler) listByGroup(c *fiber.Ctx) error {
	tasks, err := h.service.ListByGroup(withRequestContext(c), c.Params("groupId"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list tasks")
	}
	return utils.SendSuccess(c, "tasks retrieved", tasks)
}

func (h *TaskHandler) updateStatus(c *fiber.Ctx) error {
	var payload dto.TaskStatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.UpdateStatus(withRequestContext(c), userIDFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update task status")
	}
	return utils.SendSuccess(c, "task status updated", result)
}

func (h *TaskHandler) addComment(c *fiber.Ctx) error {
	var payload dto.CommentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	comment, err := h.service.AddComment(withRequestContext(c), userIDFromContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to add comment")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "comment added", comment)
}

func (h *TaskHandler) listComments(c *fiber.Ctx) error {
	comments, err := h.service.ListComments(withRequestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list comments")
	}
	return utils.SendSuccess(c, "comments retrieved", comments)
}

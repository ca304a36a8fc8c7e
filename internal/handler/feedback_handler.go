package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fairshare-api/internal/dto"
	"github.com/noah-isme/fairshare-api/internal/middleware"
	"github.com/noah-isme/fairshare-api/internal/service"
	"github.com/noah-isme/fairshare-api/internal/utils"
)

// FeedbackHandler exposes peer review endpoints.
type FeedbackHandler struct {
	service service.FeedbackService
	logger  zerolog.Logger
}

// NewFeedbackHandler constructs a feedback handler.
func NewFeedbackHandler(service service.FeedbackService, logger zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		logger:  logger.With().Str("component", "feedback_handler").Logger(),
	}
}

// Register wires feedback routes.
func (h *FeedbackHandler) Register(router fiber.Router) {
	router.Post("", middleware.WithAuth(h.submit, middleware.AuthOptions{Role: middleware.AuthRoleStudent}))
	router.Get("/project/:projectId", middleware.WithAuth(h.listByProject, middleware.AuthOptions{Role: middleware.AuthRoleFaculty}))
	router.Get("/student/:studentId/project/:projectId", middleware.WithAuth(h.studentSummary, middleware.AuthOptions{}))
}

func (h *FeedbackHandler) submit(c *fiber.Ctx) error {
	var payload dto.FeedbackSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	feedback, err := h.service.Submit(withRequestContext(c), userIDFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to submit feedback")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "feedback submitted", feedback)
}

func (h *FeedbackHandler) listByProject(c *fiber.Ctx) error {
	items, err := h.service.ListByProject(withRequestContext(c), c.Params("projectId"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list feedback")
	}
	return utils.SendSuccess(c, "feedback retrieved", items)
}

func (h *FeedbackHandler) studentSummary(c *fiber.Ctx) error {
	summary, err := h.service.StudentSummary(
		withRequestContext(c),
		userIDFromContext(c),
		userRoleFromContext(c),
		c.Params("studentId"),
		c.Params("projectId"),
	)
	if err != nil {
		return respondError(c, h.logger, err, "failed to summarise feedback")
	}
	return utils.SendSuccess(c, "feedback summary retrieved", summary)
}

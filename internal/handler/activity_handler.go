package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fairshare-api/internal/dto"
	"github.com/noah-isme/fairshare-api/internal/middleware"
	"github.com/noah-isme/fairshare-api/internal/service"
	"github.com/noah-isme/fairshare-api/internal/utils"
)

// ActivityHandler exposes the activity log queries.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs an activity handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register wires activity routes.
func (h *ActivityHandler) Register(router fiber.Router) {
	authed := middleware.AuthOptions{}

	router.Get("/project/:projectId", middleware.WithAuth(h.listByProject, authed))
	router.Get("/user/:userId/project/:projectId", middleware.WithAuth(h.userTimeline, authed))
	router.Get("/summary/project/:projectId", middleware.WithAuth(h.summary, authed))
}

func (h *ActivityHandler) listByProject(c *fiber.Ctx) error {
	since, err := parseQueryTime(c, "startDate")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	until, err := parseQueryTime(c, "endDate")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	entries, err := h.service.List(withRequestContext(c), dto.ActivityListRequest{
		ProjectID: c.Params("projectId"),
		GroupID:   c.Query("groupId"),
		UserID:    c.Query("userId"),
		Since:     since,
		Until:     until,
		Limit:     limit,
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list activity")
	}
	return utils.SendSuccess(c, "activity retrieved", entries)
}

func (h *ActivityHandler) userTimeline(c *fiber.Ctx) error {
	entries, err := h.service.UserTimeline(withRequestContext(c), c.Params("userId"), c.Params("projectId"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load activity timeline")
	}
	return utils.SendSuccess(c, "activity timeline retrieved", entries)
}

func (h *ActivityHandler) summary(c *fiber.Ctx) error {
	items, err := h.service.Summary(withRequestContext(c), c.Params("projectId"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to summarise activity")
	}
	return utils.SendSuccess(c, "activity summary retrieved", items)
}

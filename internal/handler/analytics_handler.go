package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fairshare-api/internal/dto"
	"github.com/noah-isme/fairshare-api/internal/middleware"
	"github.com/noah-isme/fairshare-api/internal/service"
	"github.com/noah-isme/fairshare-api/internal/utils"
)

// AnalyticsHandler exposes the contribution report and alert endpoints to faculty.
type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler constructs an analytics handler.
func NewAnalyticsHandler(service service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register wires analytics routes.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	faculty := middleware.AuthOptions{Role: middleware.AuthRoleFaculty}

	router.Get("/contribution-report/:projectId", middleware.WithAuth(h.contributionReport, faculty))
	router.Get("/alerts/:projectId", middleware.WithAuth(h.listAlerts, faculty))
	router.Post("/alerts", middleware.WithAuth(h.createAlert, faculty))
	router.Patch("/alerts/:id/resolve", middleware.WithAuth(h.resolveAlert, faculty))
}

func (h *AnalyticsHandler) contributionReport(c *fiber.Ctx) error {
	report, err := h.service.ContributionReport(withRequestContext(c), c.Params("projectId"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to generate contribution report")
	}
	return utils.SendSuccess(c, "contribution report generated", report)
}

func (h *AnalyticsHandler) listAlerts(c *fiber.Ctx) error {
	alerts, err := h.service.ListOpenAlerts(withRequestContext(c), c.Params("projectId"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list alerts")
	}
	return utils.SendSuccess(c, "alerts retrieved", alerts)
}

func (h *AnalyticsHandler) createAlert(c *fiber.Ctx) error {
	var payload dto.AlertCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	alert, err := h.service.CreateAlert(withRequestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create alert")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "alert created", alert)
}

func (h *AnalyticsHandler) resolveAlert(c *fiber.Ctx) error {
	alert, err := h.service.ResolveAlert(withRequestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to resolve alert")
	}
	return utils.SendSuccess(c, "alert resolved", alert)
}

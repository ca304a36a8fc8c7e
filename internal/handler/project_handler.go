package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fairshare-api/internal/dto"
	"github.com/noah-isme/fairshare-api/internal/middleware"
	"github.com/noah-isme/fairshare-api/internal/service"
	"github.com/noah-isme/fairshare-api/internal/utils"
)

// ProjectHandler exposes project endpoints.
type ProjectHandler struct {
	service service.ProjectService
	logger  zerolog.Logger
}

// NewProjectHandler constructs a project handler.
func NewProjectHandler(service service.ProjectService, logger zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{
		service: service,
		logger:  logger.With().Str("component", "project_handler").Logger(),
	}
}

// Register wires project routes. The router is expected to be behind JWT authentication.
func (h *ProjectHandler) Register(router fiber.Router) {
	faculty := middleware.AuthOptions{Role: middleware.AuthRoleFaculty}

	router.Post("", middleware.WithAuth(h.create, faculty))
	router.Get("", middleware.WithAuth(h.list, middleware.AuthOptions{}))
	router.Get("/students/list", middleware.WithAuth(h.listStudents, faculty))
	router.Get("/:id", middleware.WithAuth(h.get, middleware.AuthOptions{}))
}

func (h *ProjectHandler) create(c *fiber.Ctx) error {
	var payload dto.ProjectCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	project, err := h.service.Create(withRequestContext(c), userIDFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create project")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "project created", project)
}

func (h *ProjectHandler) list(c *fiber.Ctx) error {
	projects, err := h.service.List(withRequestContext(c), userIDFromContext(c), userRoleFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list projects")
	}
	return utils.SendSuccess(c, "projects retrieved", projects)
}

func (h *ProjectHandler) listStudents(c *fiber.Ctx) error {
	students, err := h.service.ListStudents(withRequestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list students")
	}
	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *ProjectHandler) get(c *fiber.Ctx) error {
	project, err := h.service.Get(withRequestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load project")
	}
	return utils.SendSuccess(c, "project retrieved", project)
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fairshare-api/internal/dto"
	"github.com/noah-isme/fairshare-api/internal/middleware"
	"github.com/noah-isme/fairshare-api/internal/service"
	"github.com/noah-isme/fairshare-api/internal/utils"
)

// AuthRoutes carries the middleware applied to the public and protected auth routes.
type AuthRoutes struct {
	Limiter   fiber.Handler
	Protected fiber.Handler
}

// AuthHandler exposes registration, login and identity endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires auth routes.
func (h *AuthHandler) Register(router fiber.Router, routes AuthRoutes) {
	limiter := passthrough(routes.Limiter)
	router.Post("/register", limiter, h.register)
	router.Post("/login", limiter, h.login)
	router.Get("/me", passthrough(routes.Protected), middleware.WithAuth(h.me, middleware.AuthOptions{}))
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Register(withRequestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to register user")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "user registered", response)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Login(withRequestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to login")
	}

	return utils.SendSuccess(c, "login successful", response)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, err := h.service.Me(withRequestContext(c), userIDFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load profile")
	}
	return utils.SendSuccess(c, "profile retrieved", user)
}

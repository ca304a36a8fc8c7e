package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/fairshare-api/internal/config"
	"github.com/noah-isme/fairshare-api/internal/handler"
	"github.com/noah-isme/fairshare-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	ProjectHandler   *handler.ProjectHandler
	TaskHandler      *handler.TaskHandler
	FeedbackHandler  *handler.FeedbackHandler
	AnalyticsHandler *handler.AnalyticsHandler
	ActivityHandler  *handler.ActivityHandler
	JWTMiddleware    fiber.Handler
	AuthRateLimiter  fiber.Handler
	HealthProbes     map[string]handler.HealthProbe
	ExposeMetrics    bool
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	if deps.ExposeMetrics {
		app.Get("/metrics", observability.MetricsHandler())
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"), handler.AuthRoutes{
			Limiter:   deps.AuthRateLimiter,
			Protected: jwtMiddleware,
		})
	}

	if deps.ProjectHandler != nil {
		deps.ProjectHandler.Register(api.Group("/projects", jwtMiddleware))
	}

	if deps.TaskHandler != nil {
		deps.TaskHandler.Register(api.Group("/tasks", jwtMiddleware))
	}

	if deps.FeedbackHandler != nil {
		deps.FeedbackHandler.Register(api.Group("/feedback", jwtMiddleware))
	}

	if deps.AnalyticsHandler != nil {
		deps.AnalyticsHandler.Register(api.Group("/analytics", jwtMiddleware))
	}

	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api.Group("/activity", jwtMiddleware))
	}
}

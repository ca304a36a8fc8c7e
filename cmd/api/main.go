package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/fairshare-api/internal/config"
	"github.com/noah-isme/fairshare-api/internal/database"
	"github.com/noah-isme/fairshare-api/internal/handler"
	"github.com/noah-isme/fairshare-api/internal/middleware"
	"github.com/noah-isme/fairshare-api/internal/observability"
	"github.com/noah-isme/fairshare-api/internal/repository"
	"github.com/noah-isme/fairshare-api/internal/router"
	"github.com/noah-isme/fairshare-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := observability.NewLogger(observability.LoggerConfig{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		AppName: cfg.AppName,
		AppEnv:  cfg.AppEnv,
	}, os.Stdout)

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	ctx := context.Background()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, activity retry queue disabled")
		} else {
			defer redisClient.Close()
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, activity events disabled")
		} else {
			defer natsConn.Drain()
		}
	}

	validate := service.NewValidator()

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	activityService := service.NewActivityService(activityRepo, userRepo, service.ActivityServiceOptions{
		Redis:        redisClient,
		NATS:         natsConn,
		EventsPrefix: cfg.EventsPrefix,
		LimitMax:     cfg.ActivityLimitMax,
	}, logger)
	authService := service.NewAuthService(userRepo, service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL), validate, logger)
	projectService := service.NewProjectService(projectRepo, userRepo, validate, logger)
	taskService := service.NewTaskService(taskRepo, projectRepo, validate, activityService, logger)
	feedbackService := service.NewFeedbackService(feedbackRepo, projectRepo, validate, logger)
	analyticsService := service.NewAnalyticsService(projectRepo, activityRepo, feedbackRepo, alertRepo, validate, logger)

	if replayed, err := activityService.ReplayPending(ctx); err != nil {
		logger.Warn().Err(err).Int("replayed", replayed).Msg("activity replay incomplete")
	} else if replayed > 0 {
		logger.Info().Int("replayed", replayed).Msg("replayed queued activity entries")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: os.Stdout})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authService, logger),
		ProjectHandler:   handler.NewProjectHandler(projectService, logger),
		TaskHandler:      handler.NewTaskHandler(taskService, logger),
		FeedbackHandler:  handler.NewFeedbackHandler(feedbackService, logger),
		AnalyticsHandler: handler.NewAnalyticsHandler(analyticsService, logger),
		ActivityHandler:  handler.NewActivityHandler(activityService, logger),
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
		AuthRateLimiter:  middleware.RateLimit("auth", cfg.AuthRateLimit, cfg.AuthRateWindow),
		HealthProbes:     healthProbes(db, redisClient, natsConn),
		ExposeMetrics:    true,
	})

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress()).Msg("starting http server")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func healthProbes(db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn) map[string]handler.HealthProbe {
	probes := map[string]handler.HealthProbe{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		probes["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if natsConn != nil {
		probes["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return errors.New("nats disconnected")
			}
			return nil
		}
	}
	return probes
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}

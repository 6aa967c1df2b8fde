package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskflow-api/internal/api/middleware"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/redis/go-redis/v9"
)

// application holds the shared dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client

	jwtService  auth.JWTService
	userService service.UserService
	taskService service.TaskService

	// rateLimiter is nil when rate limiting is disabled.
	rateLimiter middleware.Counter
}

// newApplication wires stores, services and optional infrastructure together.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes),
		slog.Int("refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes))

	passwords := auth.NewBcryptVerifier(cfg.Auth.BCryptCost)
	userStore := postgres.NewPostgresUserStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)

	app.userService, err = service.NewUserService(userStore, passwords, passwords, db, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize user service: %w", err)
	}
	app.taskService, err = service.NewTaskService(taskStore, db, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task service: %w", err)
	}

	if cfg.RateLimit.Enabled() {
		app.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.RedisAddr,
			Password: cfg.RateLimit.RedisPassword,
			DB:       cfg.RateLimit.RedisDB,
		})
		// The limiter fails open, so an unreachable redis only warrants a warning.
		if err := app.redis.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, rate limiting will fail open",
				slog.String("addr", cfg.RateLimit.RedisAddr),
				slog.String("error", err.Error()))
		}
		app.rateLimiter = middleware.NewRedisCounter(app.redis)
		logger.Info("rate limiting enabled",
			slog.Int("max_requests", cfg.RateLimit.MaxRequests),
			slog.Int("window_seconds", cfg.RateLimit.WindowSeconds))
	}

	return app, nil
}

// cleanup releases the database pool and redis client.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("failed to close redis client", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}
}

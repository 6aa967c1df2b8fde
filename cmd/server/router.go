package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/taskflow-api/internal/api"
	"github.com/phrazzld/taskflow-api/internal/api/middleware"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
)

const healthCheckTimeout = 2 * time.Second

// setupRouter builds the HTTP router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{middleware.TraceIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.logger)
	authMiddleware := middleware.NewAuthMiddleware(app.jwtService)
	rateLimit := middleware.RateLimit(
		app.rateLimiter,
		app.config.RateLimit.MaxRequests,
		app.config.RateLimit.Window(),
		middleware.KeyByIPAndPath,
	)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Group(func(r chi.Router) {
			r.Use(rateLimit)
			r.Post("/register/", authHandler.Register)
			r.Post("/login/", authHandler.Login)
			r.Post("/token/refresh/", authHandler.RefreshToken)
		})
		r.Get("/verify-email/{token}/", userHandler.VerifyEmail)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/tasks/", taskHandler.ListTasks)
			r.Post("/tasks/", taskHandler.CreateTask)
			r.Get("/tasks/{id}/", taskHandler.GetTask)
			r.Patch("/tasks/{id}/", taskHandler.UpdateTask)
			r.Delete("/tasks/{id}/", taskHandler.DeleteTask)
			r.Patch("/reorder/", taskHandler.ReorderTasks)
			r.Get("/upcoming/", taskHandler.UpcomingTasks)

			r.Get("/user/", userHandler.CurrentUser)
			r.Patch("/user/", userHandler.UpdateCurrentUser)
			r.Get("/user-status/", userHandler.UserStatus)
			r.Post("/complete-onboarding/", userHandler.CompleteOnboarding)
		})
	})

	r.Get("/health", app.health)

	return r
}

// health reports whether the server can reach its database.
func (app *application) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := app.db.PingContext(ctx); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

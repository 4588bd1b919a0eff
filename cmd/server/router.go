package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dcastillo/tasktrail-api/internal/api"
	apiMiddleware "github.com/dcastillo/tasktrail-api/internal/api/middleware"
)

// setupRouter builds the chi router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService)
	userHandler := api.NewUserHandler(app.userService)
	taskHandler := api.NewTaskHandler(app.taskService)
	catalogHandler := api.NewCatalogHandler(app.catalogService)
	teamHandler := api.NewTeamHandler(app.teamService)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public, rate limited)
		r.Group(func(r chi.Router) {
			r.Use(app.authLimiter.Limit)
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/refresh", authHandler.RefreshToken)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/me", authHandler.Me)

			r.Get("/users", userHandler.List)
			r.Get("/users/{id}", userHandler.Get)
			r.Put("/users/{id}", userHandler.Update)

			r.Post("/teams", teamHandler.Create)
			r.Get("/teams", teamHandler.List)
			r.Get("/teams/{id}", teamHandler.Get)
			r.Delete("/teams/{id}", teamHandler.Delete)

			r.Post("/tasks", taskHandler.Create)
			r.Get("/tasks", taskHandler.List)
			r.Get("/tasks/{id}", taskHandler.Get)
			r.Put("/tasks/{id}", taskHandler.Update)
			r.Patch("/tasks/{id}", taskHandler.Update)
			r.Delete("/tasks/{id}", taskHandler.Delete)

			r.Post("/tasks/{id}/assignments", taskHandler.Assign)
			r.Get("/tasks/{id}/assignments", taskHandler.ListAssignments)
			r.Post("/tasks/{id}/comments", taskHandler.AddComment)
			r.Get("/tasks/{id}/comments", taskHandler.ListComments)
			r.Get("/tasks/{id}/history", taskHandler.ListHistory)

			r.Post("/tags", catalogHandler.CreateTag)
			r.Get("/tags", catalogHandler.ListTags)
			r.Get("/tags/{id}", catalogHandler.GetTag)

			r.Post("/templates", catalogHandler.CreateTemplate)
			r.Get("/templates", catalogHandler.ListTemplates)
			r.Get("/templates/{name}", catalogHandler.GetTemplate)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}

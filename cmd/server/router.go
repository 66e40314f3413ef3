package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jukuhub/juku-api/internal/api"
	apiMiddleware "github.com/jukuhub/juku-api/internal/api/middleware"
)

// setupRouter wires the HTTP surface: public auth endpoints, authenticated
// student endpoints and the admin group behind the role check.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.logger)
	lessonHandler := api.NewLessonHandler(app.lessonService, app.logger)
	questionHandler := api.NewQuestionHandler(app.questionService, app.logger)
	notificationHandler := api.NewNotificationHandler(app.notificationService, app.logger)
	adminHandler := api.NewAdminHandler(app.userService, app.statsService, app.logger)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	adminMiddleware := apiMiddleware.NewAdminMiddleware(app.userStore)

	r.Route("/api", func(r chi.Router) {
		// Public authentication endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/lessons/generate", lessonHandler.GenerateLesson)

			r.Post("/questions", questionHandler.SubmitQuestion)
			r.Get("/questions/{id}", questionHandler.GetQuestion)

			r.Post("/notifications", notificationHandler.SendNotification)
			r.Post("/devices", notificationHandler.RegisterDevice)

			// Admin endpoints
			r.Group(func(r chi.Router) {
				r.Use(adminMiddleware.RequireAdmin)

				r.Get("/admin/users", adminHandler.ListUsers)
				r.Patch("/admin/users/{id}", adminHandler.UpdateUser)
				r.Get("/admin/usage-stats", adminHandler.UsageStats)
			})
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

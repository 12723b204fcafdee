package handler

import (
	"AuthSessionService/internal/security"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RegisterRoutes маршруты API под basePath, /health и /metrics в корне
func RegisterRoutes(router chi.Router, basePath string, authentication *AuthenticationHandler, users *UserHandler, health *HealthHandler, metricsHandler http.Handler) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/health", health.Health)
	if metricsHandler != nil {
		router.Handle("/metrics", metricsHandler)
	}

	router.Route(basePath, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Post("/signup", authentication.SignUp)
			r.Post("/login", authentication.Login)
		})
		r.Group(func(r chi.Router) {
			r.Use(security.BearerTokenMiddleware)
			r.Post("/refresh", authentication.Refresh)
			r.Post("/logout", authentication.Logout)
			r.Post("/logout_all", authentication.LogoutAll)
			r.Get("/me", users.GetCurrentUser)
			r.Patch("/me", users.UpdateCurrentUser)
		})
	})
}

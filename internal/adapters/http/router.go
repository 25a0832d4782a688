package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tripveo/account-security-service/internal/application"
)

// Handler is the HTTP adapter entrypoint for account security use-cases.
// Keeping only the application dependency here preserves clean adapter boundaries.
type Handler struct {
	service *application.Service
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter registers HTTP routes and the middleware stack.
// Centralizing routes here ensures consistent auth and error behavior across endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/auth/v1", func(r chi.Router) {
		r.Post("/login", handler.login)
		r.Get("/remaining-attempts", handler.remainingAttempts)

		r.Group(func(r chi.Router) {
			r.Use(handler.sessionMiddleware)
			r.Get("/session", handler.sessionCheck)
			r.Post("/logout", handler.logout)
		})
	})

	r.Route("/admin/v1", func(r chi.Router) {
		r.Use(handler.sessionMiddleware)
		r.Use(handler.requireMainAdmin)

		r.Post("/accounts/unlock", handler.adminUnlock)
		r.Get("/accounts/locked", handler.adminListLocked)
		r.Get("/accounts/dormant", handler.adminListDormant)
		r.Get("/accounts/attempts", handler.adminLoginHistory)
		r.Put("/accounts/{account_id}/status", handler.adminSetStatus)
		r.Post("/accounts/repair-never-logged-in", handler.adminRepairNeverLoggedIn)
		r.Post("/reconcile", handler.adminReconcile)
		r.Put("/settings/{key}", handler.adminUpdateSetting)
	})

	return r
}

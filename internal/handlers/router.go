package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mingas-api/internal/middleware"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// MetricsPath mounts the Prometheus handler when non-empty and
	// Handlers.Metrics is set.
	MetricsPath string
}

// NewRouter wires the API routes and global middlewares.
func NewRouter(h *Handlers, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware(h.Metrics))
	r.Use(middleware.RecoveryMiddleware)

	r.NotFound(h.handleNotFound)
	r.MethodNotAllowed(h.handleMethodNotAllowed)

	r.Get("/up", h.HandleHealth)
	if opts.MetricsPath != "" && h.Metrics != nil {
		r.Method(http.MethodGet, opts.MetricsPath, h.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/events", func(events chi.Router) {
			events.Get("/", h.HandleListEvents)
			events.Post("/", h.HandleCreateEvent)
			events.Get("/{id}", h.HandleGetEvent)
			events.Put("/{id}", h.HandleUpdateEvent)
			events.Patch("/{id}", h.HandleUpdateEvent)
			events.Delete("/{id}", h.HandleDeleteEvent)

			events.Get("/{id}/participants", h.HandleListParticipants)
			events.Post("/{id}/participants", h.HandleRegister)
		})

		api.Get("/participants/{id}", h.HandleGetParticipant)
		api.Delete("/participants/{id}", h.HandleCancel)
	})

	return r
}

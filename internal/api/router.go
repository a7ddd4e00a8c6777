package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/luach/internal/eventservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /stream inside the auth group.
func NewRouter(svc *eventservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Events.
	r.Get("/events", h.ListEvents)
	r.Get("/events/{id}", h.GetEvent)

	// Views.
	r.Get("/upcoming", h.Upcoming)
	r.Get("/calendar/day/{date}", h.CalendarDay)
	r.Get("/calendar/{year}/{month}", h.CalendarMonth)
	r.Get("/stats", h.Stats)
	r.Get("/export.ics", h.ExportICS)

	r.Get("/catalog", h.Catalog)

	// Writes need a signed-in caller.
	r.Group(func(r chi.Router) {
		r.Use(RequireIdentity)
		r.Post("/events", h.CreateEvent)
		r.Post("/events/bulk-delete", h.BulkDelete)
		r.Put("/events/{id}", h.UpdateEvent)
		r.Delete("/events/{id}", h.DeleteEvent)
		r.Post("/catalog/apply", h.ApplyCatalog)
	})

	if sseHandler != nil {
		r.Get("/stream", sseHandler.ServeHTTP)
	}

	return r
}

package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/yphilios-calendar/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET    /health
//	GET    /api/v1/calendar?year=
//	GET    /api/v1/dates/{year}/{month}/{day}
//	GET    /api/v1/days/{dayIndex}
//	GET    /api/v1/years/{year}
//	GET    /api/v1/years/{year}/events
//	GET    /api/v1/years/{year}/months/{month}
//	GET    /api/v1/years/{year}/weeks/{week}
//	GET    /api/v1/events
//	GET    /api/v1/events/{key}?year=
//	GET    /api/v1/catalog?section=&year=&tag=
//	GET    /api/v1/catalog/tags
//	GET    /api/v1/catalog/stats
//	POST   /api/v1/admin/catalog/reload  (API key)
//	DELETE /api/v1/admin/cache           (API key)
func SetupRoutes(h *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RecoveryMiddleware(logger),
		RequestIDMiddleware(logger),
		LoggingMiddleware(logger),
		CORSMiddleware(),
	)

	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/calendar", h.GetCalendar)
		r.Get("/dates/{year}/{month}/{day}", h.GetDate)
		r.Get("/days/{dayIndex}", h.GetDay)

		r.Route("/years/{year}", func(r chi.Router) {
			r.Get("/", h.GetYear)
			r.Get("/events", h.GetYearEvents)
			r.Get("/months/{month}", h.GetMonth)
			r.Get("/weeks/{week}", h.GetWeek)
		})

		r.Get("/events", h.ListEvents)
		r.Get("/events/{key}", h.GetEvent)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", h.ListCatalog)
			r.Get("/tags", h.ListTags)
			r.Get("/stats", h.GetCatalogStats)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(AuthMiddleware(cfg, logger))
			r.Post("/catalog/reload", h.ReloadCatalog)
			r.Delete("/cache", h.FlushCache)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Route not found")
	})

	return r
}

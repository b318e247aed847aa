package handlers

import (
	"net/http"
	"time"

	"github.com/XavierBriggs/Athena/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// NewRouter mounts every Athena route behind the standard middleware stack
func NewRouter(h *Handler, logger *logrus.Logger, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		// Players
		r.Get("/players/{playerID}/drilldown", h.GetDrilldown)
		r.Get("/players/{playerID}/alternate-lines", h.GetAlternateLines)
		r.Get("/players/{playerID}/correlations", h.GetCorrelations)

		// Odds
		r.Get("/odds/best", h.GetBestOdds)

		// Preferences
		r.Get("/users/{userID}/preferences", h.GetPreferences)
		r.Post("/users/{userID}/stars/{playerID}", h.ToggleStar)
		r.Post("/users/{userID}/filters", h.ApplyFilterChange)
	})

	return r
}

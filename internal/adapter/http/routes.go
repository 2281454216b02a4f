package http

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/coordinations", func(r chi.Router) {
			r.Post("/plan", h.CreatePlan)
			r.Post("/start", h.StartCoordination)
			r.Post("/{id}/complete", h.CompleteCoordination)
		})

		r.Get("/analytics", h.GetAnalytics)
		r.Get("/insights", h.GetInsights)
		r.Post("/recommendations", h.Recommend)
	})
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/imob-crm/internal/infra/http/middleware"
)

type Routes struct {
	Health         *HealthHandler
	Board          *BoardHandler
	Followup       *FollowupHandler
	Lead           *LeadHandler
	WriteLimiter   *RateLimiter
	AllowedOrigins []string
}

func NewRouter(rt Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	if rt.Health != nil {
		r.Get("/health", rt.Health.Handle)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/leads", func(r chi.Router) {
		r.Get("/aging", rt.Board.HandleList)
		r.Get("/{id}/aging", rt.Board.HandleLead)
		r.Get("/{id}/aging/stream", rt.Board.HandleStream)

		r.Group(func(r chi.Router) {
			if rt.WriteLimiter != nil {
				r.Use(rt.WriteLimiter.Middleware)
			}
			r.Put("/{id}/followup", rt.Followup.HandleSchedule)
			r.Delete("/{id}/followup", rt.Followup.HandleRemove)
			r.Post("/{id}/interactions", rt.Lead.HandleInteraction)
			r.Put("/{id}/stage", rt.Lead.HandleStage)
		})
	})

	return r
}

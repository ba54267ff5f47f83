package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vsinha/quoting/pkg/application/services"
	"github.com/vsinha/quoting/pkg/domain/repositories"
)

// NewRouter wires the quote endpoints. writer may be nil, in which case pushed
// snapshots are recomputed without being stored.
func NewRouter(svc *services.QuoteService, writer repositories.QuoteWriter, timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	h := NewHandlers(svc, writer)

	r.Get("/healthz", h.Health)

	r.Route("/quotes/{quoteID}", func(r chi.Router) {
		r.Post("/recompute", h.Recompute)
		r.Put("/snapshot", h.PutSnapshot)
		r.Get("/rollup", h.Rollup)
		r.Get("/events", h.Events)
		r.Get("/export.xlsx", h.ExportExcel)
		r.Get("/export.pdf", h.ExportPDF)

		r.Route("/lines/{lineID}", func(r chi.Router) {
			r.Get("/effects", h.Effects)
			r.Get("/evaluate", h.Evaluate)
			r.Get("/prices", h.Prices)
		})
	})

	return r
}

package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/subdash/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Metrics records HTTP traffic and exposes the scrape endpoint.
type Metrics interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
	Handler() http.Handler
}

// NewRouter mounts the API routes behind the request-id, logging, metrics
// and panic-recovery middleware.
func NewRouter(h *Handler, m Metrics, l logging.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog(l.With("module", "http_access")))
	r.Use(observe(m))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/members", h.RegisterMember)

		r.Get("/reports/active", h.ActiveSubscriptions)
		r.Get("/reports/revenue", h.MonthlyRevenue)
		r.Get("/reports/trends", h.MembershipTrends)
		r.Get("/summary", h.Summary)

		r.Get("/exports/{report}.csv", h.ExportCSV)
		r.Post("/exports/{report}/archive", h.ArchiveExport)
	})

	return r
}

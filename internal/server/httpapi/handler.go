// Package httpapi is the HTTP presentation boundary of the dashboard:
// member registration, report views, CSV downloads and archived exports.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/subdash/internal/common"
	"github.com/dmitrijs2005/subdash/internal/logging"
	"github.com/dmitrijs2005/subdash/internal/server/models"
	"github.com/dmitrijs2005/subdash/internal/server/services"
	"github.com/dmitrijs2005/subdash/internal/timex"
	"github.com/go-chi/chi/v5"
)

type Registrar interface {
	Register(ctx context.Context, in models.NewMember) (*models.Registration, error)
}

type Reporter interface {
	ActiveSubscriptions(ctx context.Context) ([]models.Member, error)
	MonthlyRevenue(ctx context.Context) ([]models.MonthlyRevenue, error)
	MembershipTrends(ctx context.Context) ([]models.MembershipTrend, error)
	Summary(ctx context.Context) (*models.Summary, error)
}

type Exporter interface {
	Render(ctx context.Context, report services.Report) ([]byte, error)
}

type Archiver interface {
	Archive(ctx context.Context, report services.Report) (string, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

const pingTimeout = 2 * time.Second

type Handler struct {
	registrar Registrar
	reports   Reporter
	exports   Exporter
	archive   Archiver
	db        Pinger
	logger    logging.Logger
}

func NewHandler(reg Registrar, rep Reporter, exp Exporter, arc Archiver, db Pinger, l logging.Logger) *Handler {
	return &Handler{
		registrar: reg,
		reports:   rep,
		exports:   exp,
		archive:   arc,
		db:        db,
		logger:    l.With("module", "http_api"),
	}
}

// RegisterMember handles POST /api/members.
func (h *Handler) RegisterMember(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: malformed request body: %v", common.ErrorValidation, err))
		return
	}

	in, err := req.toModel()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	reg, err := h.registrar.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info(r.Context(), "member registered",
		"id", reg.ID, "subscription_end", reg.SubscriptionEnd.Format(timex.DateLayout))

	writeJSON(w, http.StatusCreated, registerResponse{
		ID:                reg.ID,
		SubscriptionStart: reg.SubscriptionStart.Format(timex.DateLayout),
		SubscriptionEnd:   reg.SubscriptionEnd.Format(timex.DateLayout),
	})
}

func (h *Handler) ActiveSubscriptions(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.ActiveSubscriptions(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]memberDTO, 0, len(rows))
	for _, m := range rows {
		out = append(out, toMemberDTO(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) MonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.MonthlyRevenue(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]revenueDTO, 0, len(rows))
	for _, m := range rows {
		out = append(out, revenueDTO{Month: m.Month.Format(timex.DateLayout), Revenue: m.Revenue.StringFixed(2)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) MembershipTrends(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.MembershipTrends(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTrendDTOs(rows))
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.reports.Summary(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryDTO{
		ActiveSubscriptions: s.ActiveSubscriptions,
		TotalRevenue:        s.TotalRevenue.StringFixed(2),
		Trends:              toTrendDTOs(s.Trends),
	})
}

// ExportCSV handles GET /api/exports/{report}.csv.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	report, err := services.ParseReport(chi.URLParam(r, "report"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	data, err := h.exports.Render(r.Context(), report)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ArchiveExport handles POST /api/exports/{report}/archive.
func (h *Handler) ArchiveExport(w http.ResponseWriter, r *http.Request) {
	report, err := services.ParseReport(chi.URLParam(r, "report"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	url, err := h.archive.Archive(r.Context(), report)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info(r.Context(), "export archived", "report", string(report))
	writeJSON(w, http.StatusOK, archiveResponse{URL: url})
}

// Health handles GET /healthz by pinging the database.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

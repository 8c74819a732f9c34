package audit

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

// Handler serves the audit trail.
type Handler struct {
	logger  *slog.Logger
	service *Service
	loc     *time.Location
}

// NewHandler constructs the audit handler.
func NewHandler(logger *slog.Logger, service *Service, loc *time.Location) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{logger: logger, service: service, loc: loc}
}

// MountRoutes registers audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleTimeline)
	r.Get("/export", h.handleExport)
}

func (h *Handler) filters(r *http.Request) (TimelineFilters, error) {
	q := r.URL.Query()
	rng, err := shared.ParseDateRange(q.Get("from"), q.Get("to"), h.loc)
	if err != nil {
		return TimelineFilters{}, err
	}
	return TimelineFilters{
		Range:    rng,
		Entity:   q.Get("entity"),
		Action:   q.Get("action"),
		Page:     httpx.QueryInt(r, "page", 1),
		PageSize: httpx.QueryInt(r, "page_size", defaultPageSize),
	}, nil
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	p, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filters, err := h.filters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Timeline(r.Context(), p.AccountID, filters)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	p, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filters, err := h.filters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.Export(r.Context(), p.AccountID, filters)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit.csv"`)
	if err := WriteTimelineCSV(w, rows, h.loc); err != nil {
		h.logger.Error("write audit csv", slog.Any("error", err))
	}
}

package inventory

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	mdshared "github.com/jassiaa29/pos-ventas-simple/internal/masterdata/shared"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

// Handler wires HTTP endpoints for inventory module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs inventory handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validate: httpx.NewValidator()}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/summary", h.handleSummary)
	r.Get("/low-stock", h.handleLowStock)
	r.Post("/{productID}/adjustments", h.handleAdjustment)
	r.Get("/{productID}/movements", h.handleMovements)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	p, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filters, err := mdshared.FiltersFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, total, err := h.service.List(r.Context(), p.AccountID, filters)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       items,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	p, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	sum, err := h.service.Summary(r.Context(), p.AccountID)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sum)
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	p, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, err := h.service.LowStock(r.Context(), p.AccountID)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	if items == nil {
		items = []StockItem{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": items})
}

func (h *Handler) handleAdjustment(w http.ResponseWriter, r *http.Request) {
	p, productID, ok := principalAndProduct(w, r)
	if !ok {
		return
	}
	var input AdjustmentInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validate, input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Adjust(r.Context(), p.AccountID, productID, input)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	h.logger.Info("stock adjusted",
		slog.String("product_id", productID.String()),
		slog.Int("delta", input.Delta),
		slog.Int("stock", result.Movement.StockAfter))
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleMovements(w http.ResponseWriter, r *http.Request) {
	p, productID, ok := principalAndProduct(w, r)
	if !ok {
		return
	}
	movements, err := h.service.Movements(r.Context(), p.AccountID, productID, httpx.QueryInt(r, "limit", defaultMovementLimit))
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	if movements == nil {
		movements = []Movement{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": movements})
}

func principalAndProduct(w http.ResponseWriter, r *http.Request) (shared.Principal, uuid.UUID, bool) {
	p, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return shared.Principal{}, uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		httpx.RespondError(w, mdshared.ErrInvalidID)
		return shared.Principal{}, uuid.Nil, false
	}
	return p, id, true
}

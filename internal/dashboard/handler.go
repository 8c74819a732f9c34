package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

const maxTopN = 20

// Handler serves the dashboard endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the dashboard handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleDashboard)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	top := httpx.QueryInt(r, "top", DefaultTopN)
	if top < 1 || top > maxTopN {
		httpx.RespondError(w, httpx.NewValidationError("top", "must be between 1 and 20"))
		return
	}
	dash, err := h.service.Get(r.Context(), p.AccountID, top)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dash)
}

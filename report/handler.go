package report

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
)

// Handler exposes the renderer status.
type Handler struct {
	client *Client
	logger *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(client *Client, logger *slog.Logger) *Handler {
	return &Handler{client: client, logger: logger}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	err := h.client.Ping(r.Context())
	switch {
	case err == nil:
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, ErrDisabled):
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "disabled"})
	default:
		if h.logger != nil {
			h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		}
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
}

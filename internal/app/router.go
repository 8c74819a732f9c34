package app

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/jassiaa29/pos-ventas-simple/internal/audit"
	"github.com/jassiaa29/pos-ventas-simple/internal/auth"
	"github.com/jassiaa29/pos-ventas-simple/internal/dashboard"
	"github.com/jassiaa29/pos-ventas-simple/internal/inventory"
	"github.com/jassiaa29/pos-ventas-simple/internal/masterdata/categories"
	"github.com/jassiaa29/pos-ventas-simple/internal/masterdata/products"
	"github.com/jassiaa29/pos-ventas-simple/internal/masterdata/suppliers"
	"github.com/jassiaa29/pos-ventas-simple/internal/observability"
	"github.com/jassiaa29/pos-ventas-simple/internal/payments"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
	"github.com/jassiaa29/pos-ventas-simple/internal/sales"
	"github.com/jassiaa29/pos-ventas-simple/internal/sales/customers"
	"github.com/jassiaa29/pos-ventas-simple/internal/settings"
	"github.com/jassiaa29/pos-ventas-simple/jobs"
	"github.com/jassiaa29/pos-ventas-simple/report"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics
	Health  map[string]HealthCheck

	// RequireAuth guards every account scoped route.
	RequireAuth func(http.Handler) http.Handler

	AuthHandler       *auth.Handler
	DashboardHandler  *dashboard.Handler
	SalesHandler      *sales.Handler
	InventoryHandler  *inventory.Handler
	ProductsHandler   *products.Handler
	CategoriesHandler *categories.Handler
	CustomersHandler  *customers.Handler
	SuppliersHandler  *suppliers.Handler
	PaymentsHandler   *payments.Handler
	SettingsHandler   *settings.Handler
	AuditHandler      *audit.Handler
	ReportHandler     *report.Handler
	JobHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, http.StatusText(http.StatusNotFound), "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), "")
	})

	r.Get("/healthz", healthHandler(params.Health))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if params.AuthHandler != nil {
			r.Route("/auth", params.AuthHandler.MountRoutes)
		}

		r.Group(func(r chi.Router) {
			if params.RequireAuth != nil {
				r.Use(params.RequireAuth)
			}
			for _, route := range []struct {
				prefix  string
				enabled bool
				mount   func(chi.Router)
			}{
				{"/dashboard", params.DashboardHandler != nil, params.DashboardHandler.MountRoutes},
				{"/sales", params.SalesHandler != nil, params.SalesHandler.MountRoutes},
				{"/cart", params.SalesHandler != nil, params.SalesHandler.MountCartRoutes},
				{"/inventory", params.InventoryHandler != nil, params.InventoryHandler.MountRoutes},
				{"/products", params.ProductsHandler != nil, params.ProductsHandler.MountRoutes},
				{"/categories", params.CategoriesHandler != nil, params.CategoriesHandler.MountRoutes},
				{"/customers", params.CustomersHandler != nil, params.CustomersHandler.MountRoutes},
				{"/suppliers", params.SuppliersHandler != nil, params.SuppliersHandler.MountRoutes},
				{"/payments", params.PaymentsHandler != nil, params.PaymentsHandler.MountRoutes},
				{"/settings", params.SettingsHandler != nil, params.SettingsHandler.MountRoutes},
				{"/audit", params.AuditHandler != nil, params.AuditHandler.MountRoutes},
				{"/reports", params.ReportHandler != nil, params.ReportHandler.MountRoutes},
				{"/jobs", params.JobHandler != nil, params.JobHandler.MountRoutes},
			} {
				if route.enabled {
					r.Route(route.prefix, route.mount)
				}
			}
		})
	})

	return r
}

type healthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		results := make([]string, len(names))
		var g errgroup.Group
		for i, name := range names {
			check := checks[name]
			g.Go(func() error {
				if err := check(ctx); err != nil {
					results[i] = "down"
					return err
				}
				results[i] = "ok"
				return nil
			})
		}
		failed := g.Wait() != nil

		report := healthReport{Status: "ok"}
		if len(names) > 0 {
			report.Checks = make(map[string]string, len(names))
			for i, name := range names {
				report.Checks[name] = results[i]
			}
		}
		status := http.StatusOK
		if failed {
			report.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		httpx.JSON(w, status, report)
	}
}

package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

const idempotencyHeader = "Idempotency-Key"

// Handler manages sales and cart endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	carts    *CartService
	validate *validator.Validate
	loc      *time.Location
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, carts *CartService, loc *time.Location) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		logger:   logger,
		service:  service,
		carts:    carts,
		validate: httpx.NewValidator(),
		loc:      loc,
	}
}

// MountRoutes registers sale routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/quote", h.quote)
	r.Get("/{id}", h.show)
	r.Get("/{id}/receipt", h.receipt)
	r.Group(func(r chi.Router) {
		r.Use(checkoutLimiter())
		r.Post("/", h.checkout)
	})
}

// MountCartRoutes registers cart routes.
func (h *Handler) MountCartRoutes(r chi.Router) {
	r.Get("/", h.cartView)
	r.Delete("/", h.cartClear)
	r.Post("/items", h.cartAdd)
	r.Patch("/items/{productID}", h.cartUpdate)
	r.Delete("/items/{productID}", h.cartRemove)
	r.Put("/discount", h.cartDiscount)
	r.Post("/scan", h.cartScan)
	r.Group(func(r chi.Router) {
		r.Use(checkoutLimiter())
		r.Post("/checkout", h.cartCheckout)
	})
}

// checkoutLimiter throttles checkouts per account.
func checkoutLimiter() func(http.Handler) http.Handler {
	return httprate.Limit(30, time.Minute, httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
		if p, ok := shared.PrincipalFromContext(r.Context()); ok {
			return p.AccountID.String(), nil
		}
		return httprate.KeyByIP(r)
	}))
}

// ============================================================================
// SALES
// ============================================================================

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	dates, err := shared.ParseDateRange(q.Get("from"), q.Get("to"), h.loc)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filter := ListFilter{
		PaymentMethod: PaymentMethod(strings.TrimSpace(q.Get("payment_method"))),
		From:          dates.From,
		To:            dates.To,
		Search:        q.Get("search"),
		Page:          httpx.QueryInt(r, "page", 1),
		PerPage:       httpx.QueryInt(r, "per_page", 20),
	}
	if raw := q.Get("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.RespondError(w, httpx.NewValidationError("customer_id", "must be a valid id"))
			return
		}
		filter.CustomerID = &id
	}

	sales, page, err := h.service.List(r.Context(), p.AccountID, filter)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": sales, "pagination": page})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}
	sale, err := h.service.Get(r.Context(), p.AccountID, id)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	p, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req CheckoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validate, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	req.IdempotencyKey = strings.TrimSpace(r.Header.Get(idempotencyHeader))

	sale, err := h.service.Checkout(r.Context(), p.AccountID, req)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

type quoteRequest struct {
	Lines                 []CheckoutLine  `json:"items" validate:"dive"`
	GlobalDiscountPercent decimal.Decimal `json:"global_discount_percent"`
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	p, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req quoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validate, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	totals, err := h.service.Quote(r.Context(), p.AccountID, req.Lines, req.GlobalDiscountPercent)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}
	switch r.URL.Query().Get("format") {
	case "", "html":
		body, err := h.service.ReceiptHTML(r.Context(), p.AccountID, id)
		if err != nil {
			httpx.Fail(w, r, h.logger, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	case "pdf":
		body, err := h.service.ReceiptPDF(r.Context(), p.AccountID, id)
		if err != nil {
			if errors.Is(err, ErrPDFUnavailable) {
				httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "pdf rendering is not configured")
				return
			}
			if httpx.StatusOf(err) < http.StatusInternalServerError {
				httpx.RespondError(w, err)
				return
			}
			h.logger.Error("render receipt pdf", slog.Any("error", err))
			httpx.Problem(w, http.StatusBadGateway, "Bad Gateway", "")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "inline; filename=receipt-"+id.String()+".pdf")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	default:
		httpx.RespondError(w, httpx.NewValidationError("format", "must be one of html pdf"))
	}
}

// ============================================================================
// CART
// ============================================================================

func (h *Handler) cartView(w http.ResponseWriter, r *http.Request) {
	p, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	v, err := h.carts.View(r.Context(), p)
	h.respondCart(w, r, v, err)
}

func (h *Handler) cartClear(w http.ResponseWriter, r *http.Request) {
	p, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.carts.Clear(r.Context(), p); err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type cartAddRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

func (h *Handler) cartAdd(w http.ResponseWriter, r *http.Request) {
	p, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req cartAddRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validate, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	v, err := h.carts.AddProduct(r.Context(), p, req.ProductID)
	h.respondCart(w, r, v, err)
}

type cartUpdateRequest struct {
	Quantity        *int             `json:"quantity,omitempty"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
}

func (h *Handler) cartUpdate(w http.ResponseWriter, r *http.Request) {
	p, productID, ok := h.principalAndParam(w, r, "productID")
	if !ok {
		return
	}
	var req cartUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if req.Quantity == nil && req.DiscountPercent == nil {
		httpx.RespondError(w, httpx.NewValidationError("quantity", "quantity or discount_percent is required"))
		return
	}
	var v CartView
	var err error
	if req.DiscountPercent != nil {
		if v, err = h.carts.SetDiscount(r.Context(), p, productID, *req.DiscountPercent); err != nil {
			httpx.Fail(w, r, h.logger, err)
			return
		}
	}
	if req.Quantity != nil {
		v, err = h.carts.SetQuantity(r.Context(), p, productID, *req.Quantity)
	}
	h.respondCart(w, r, v, err)
}

func (h *Handler) cartRemove(w http.ResponseWriter, r *http.Request) {
	p, productID, ok := h.principalAndParam(w, r, "productID")
	if !ok {
		return
	}
	v, err := h.carts.Remove(r.Context(), p, productID)
	h.respondCart(w, r, v, err)
}

type cartDiscountRequest struct {
	GlobalDiscountPercent decimal.Decimal `json:"global_discount_percent"`
}

func (h *Handler) cartDiscount(w http.ResponseWriter, r *http.Request) {
	p, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req cartDiscountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	v, err := h.carts.SetGlobalDiscount(r.Context(), p, req.GlobalDiscountPercent)
	h.respondCart(w, r, v, err)
}

type cartScanRequest struct {
	Code string `json:"code" validate:"required,max=128"`
}

func (h *Handler) cartScan(w http.ResponseWriter, r *http.Request) {
	p, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req cartScanRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validate, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.carts.Scan(r.Context(), p, req.Code)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) cartCheckout(w http.ResponseWriter, r *http.Request) {
	p, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req CartCheckoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validate, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	req.IdempotencyKey = strings.TrimSpace(r.Header.Get(idempotencyHeader))

	sale, err := h.carts.Checkout(r.Context(), p, req)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, v CartView, err error) {
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) principalAndID(w http.ResponseWriter, r *http.Request) (shared.Principal, uuid.UUID, bool) {
	return h.principalAndParam(w, r, "id")
}

func (h *Handler) principalAndParam(w http.ResponseWriter, r *http.Request, name string) (shared.Principal, uuid.UUID, bool) {
	p, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return shared.Principal{}, uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httpx.RespondError(w, httpx.NewValidationError(name, "must be a valid id"))
		return shared.Principal{}, uuid.Nil, false
	}
	return p, id, true
}

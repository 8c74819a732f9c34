package sales

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

// CartRepository persists carts per session.
type CartRepository interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, cart *Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// CartView is a cart with its current totals.
type CartView struct {
	Cart   *Cart  `json:"cart"`
	Totals Totals `json:"totals"`
}

// ScanResult reports the outcome of a barcode/SKU scan. ClearSearch tells the
// client to empty its search field after a match.
type ScanResult struct {
	Matched     bool             `json:"matched"`
	ClearSearch bool             `json:"clear_search"`
	Product     *ProductSnapshot `json:"product,omitempty"`
	CartView
}

// CartCheckoutRequest is the payment part of a cart checkout.
type CartCheckoutRequest struct {
	PaymentMethod  PaymentMethod    `json:"payment_method" validate:"required,oneof=cash card"`
	CashReceived   *decimal.Decimal `json:"cash_received,omitempty"`
	CustomerID     *uuid.UUID       `json:"customer_id,omitempty"`
	Notes          *string          `json:"notes,omitempty" validate:"omitempty,max=1000"`
	IdempotencyKey string           `json:"-"`
}

// CartService applies cart mutations to the session cart.
type CartService struct {
	store  CartRepository
	sales  *Service
	logger *slog.Logger
}

// NewCartService constructs a CartService.
func NewCartService(store CartRepository, sales *Service, logger *slog.Logger) *CartService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartService{store: store, sales: sales, logger: logger}
}

// View returns the session cart.
func (c *CartService) View(ctx context.Context, p shared.Principal) (CartView, error) {
	cart, err := c.store.Load(ctx, p.SessionID)
	if err != nil {
		return CartView{}, err
	}
	return view(cart)
}

// AddProduct adds one unit of productID using its current price and stock.
func (c *CartService) AddProduct(ctx context.Context, p shared.Principal, productID uuid.UUID) (CartView, error) {
	product, err := c.sales.ProductSnapshot(ctx, p.AccountID, productID)
	if err != nil {
		return CartView{}, err
	}
	return c.mutate(ctx, p, func(cart *Cart) error { return cart.Add(product) })
}

// SetQuantity changes a line quantity; zero or less removes it.
func (c *CartService) SetQuantity(ctx context.Context, p shared.Principal, productID uuid.UUID, q int) (CartView, error) {
	return c.mutate(ctx, p, func(cart *Cart) error { return cart.SetQuantity(productID, q) })
}

// SetDiscount changes a line discount.
func (c *CartService) SetDiscount(ctx context.Context, p shared.Principal, productID uuid.UUID, pct decimal.Decimal) (CartView, error) {
	return c.mutate(ctx, p, func(cart *Cart) error { return cart.SetDiscount(productID, pct) })
}

// SetGlobalDiscount changes the sale-wide discount.
func (c *CartService) SetGlobalDiscount(ctx context.Context, p shared.Principal, pct decimal.Decimal) (CartView, error) {
	return c.mutate(ctx, p, func(cart *Cart) error { return cart.SetGlobalDiscount(pct) })
}

// Remove drops a line.
func (c *CartService) Remove(ctx context.Context, p shared.Principal, productID uuid.UUID) (CartView, error) {
	return c.mutate(ctx, p, func(cart *Cart) error {
		if !cart.Remove(productID) {
			return ErrLineNotFound
		}
		return nil
	})
}

// Clear empties the session cart.
func (c *CartService) Clear(ctx context.Context, p shared.Principal) error {
	return c.store.Delete(ctx, p.SessionID)
}

// Scan adds the product whose SKU equals code. No match leaves the cart untouched.
func (c *CartService) Scan(ctx context.Context, p shared.Principal, code string) (ScanResult, error) {
	candidates, err := c.sales.ScanCandidates(ctx, p.AccountID, code)
	if err != nil {
		return ScanResult{}, err
	}
	product, ok := MatchSKU(code, candidates)
	if !ok {
		v, err := c.View(ctx, p)
		return ScanResult{CartView: v}, err
	}
	v, err := c.mutate(ctx, p, func(cart *Cart) error { return cart.Add(product) })
	if err != nil {
		return ScanResult{}, err
	}
	return ScanResult{Matched: true, ClearSearch: true, Product: &product, CartView: v}, nil
}

// Checkout turns the session cart into a sale. The cart is cleared only when
// the sale commits.
func (c *CartService) Checkout(ctx context.Context, p shared.Principal, req CartCheckoutRequest) (*Sale, error) {
	cart, err := c.store.Load(ctx, p.SessionID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	sale, err := c.sales.Checkout(ctx, p.AccountID, CheckoutRequest{
		Lines:                 cart.CheckoutLines(),
		GlobalDiscountPercent: cart.GlobalDiscountPercent,
		PaymentMethod:         req.PaymentMethod,
		CashReceived:          req.CashReceived,
		CustomerID:            req.CustomerID,
		Notes:                 req.Notes,
		IdempotencyKey:        req.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	if err := c.store.Delete(context.WithoutCancel(ctx), p.SessionID); err != nil {
		c.logger.Warn("clear cart after checkout", slog.String("sale_id", sale.ID.String()), slog.Any("error", err))
	}
	return sale, nil
}

func (c *CartService) mutate(ctx context.Context, p shared.Principal, fn func(*Cart) error) (CartView, error) {
	cart, err := c.store.Load(ctx, p.SessionID)
	if err != nil {
		return CartView{}, err
	}
	if err := fn(cart); err != nil {
		return CartView{}, err
	}
	if err := c.store.Save(ctx, p.SessionID, cart); err != nil {
		return CartView{}, err
	}
	return view(cart)
}

func view(cart *Cart) (CartView, error) {
	totals, err := cart.Totals()
	if err != nil {
		return CartView{}, err
	}
	return CartView{Cart: cart, Totals: totals}, nil
}

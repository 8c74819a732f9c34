package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
)

var (
	// ErrNotFound indicates the sale does not exist for the account.
	ErrNotFound = fmt.Errorf("sale: %w", httpx.ErrNotFound)
	// ErrInsufficientStock indicates a product no longer has the requested quantity.
	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", httpx.ErrConflict)
	// ErrInsufficientCash indicates cash received does not cover the total.
	ErrInsufficientCash = &httpx.ValidationError{Fields: map[string]string{"cash_received": "must cover the sale total"}}
	// ErrEmptyCart indicates checkout without lines.
	ErrEmptyCart = &httpx.ValidationError{Fields: map[string]string{"items": "at least one item is required"}}
	// ErrDuplicateSaleNumber indicates a concurrent checkout took the same number.
	ErrDuplicateSaleNumber = fmt.Errorf("%w: sale number already used, retry checkout", httpx.ErrConflict)
	// ErrProductUnavailable indicates an inactive, unknown or out of stock product.
	ErrProductUnavailable = fmt.Errorf("%w: product unavailable", httpx.ErrConflict)
)

// PaymentMethod is how the customer paid.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// Valid reports whether m is a supported method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCard
}

// Status of a sale. Only completed sales exist today; aggregates filter on it.
type Status string

const StatusCompleted Status = "completed"

// Sale is a persisted, immutable sale header with its items.
type Sale struct {
	ID                    uuid.UUID        `json:"id"`
	AccountID             uuid.UUID        `json:"-"`
	SaleNumber            string           `json:"sale_number"`
	CustomerID            *uuid.UUID       `json:"customer_id,omitempty"`
	CustomerName          *string          `json:"customer_name,omitempty"`
	Subtotal              decimal.Decimal  `json:"subtotal"`
	ItemDiscountAmount    decimal.Decimal  `json:"item_discount_amount"`
	GlobalDiscountPercent decimal.Decimal  `json:"global_discount_percent"`
	GlobalDiscountAmount  decimal.Decimal  `json:"global_discount_amount"`
	TotalAmount           decimal.Decimal  `json:"total_amount"`
	PaymentMethod         PaymentMethod    `json:"payment_method"`
	CashReceived          *decimal.Decimal `json:"cash_received,omitempty"`
	ChangeDue             *decimal.Decimal `json:"change_due,omitempty"`
	Status                Status           `json:"status"`
	Notes                 *string          `json:"notes,omitempty"`
	SaleDate              time.Time        `json:"sale_date"`
	CreatedAt             time.Time        `json:"created_at"`
	Items                 []SaleItem       `json:"items"`
}

// SaleItem snapshots the product at sale time. ProductID becomes nil when the
// product is deleted later.
type SaleItem struct {
	ID              uuid.UUID       `json:"id"`
	SaleID          uuid.UUID       `json:"sale_id"`
	ProductID       *uuid.UUID      `json:"product_id,omitempty"`
	ProductName     string          `json:"product_name"`
	ProductSKU      string          `json:"product_sku,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

// ProductSnapshot is the subset of a product the cart and checkout need.
type ProductSnapshot struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	SKU      string          `json:"sku,omitempty"`
	Category string          `json:"category,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Active   bool            `json:"active"`
}

// Sellable reports whether the product can be added to a cart.
func (p ProductSnapshot) Sellable() bool {
	return p.Active && p.Stock > 0
}

// CheckoutLine is one requested line of a checkout.
type CheckoutLine struct {
	ProductID       uuid.UUID       `json:"product_id" validate:"required"`
	Quantity        int             `json:"quantity" validate:"gt=0"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// CheckoutRequest is the input of Service.Checkout.
type CheckoutRequest struct {
	Lines                 []CheckoutLine   `json:"items" validate:"required,min=1,dive"`
	GlobalDiscountPercent decimal.Decimal  `json:"global_discount_percent"`
	PaymentMethod         PaymentMethod    `json:"payment_method" validate:"required,oneof=cash card"`
	CashReceived          *decimal.Decimal `json:"cash_received,omitempty"`
	CustomerID            *uuid.UUID       `json:"customer_id,omitempty"`
	Notes                 *string          `json:"notes,omitempty" validate:"omitempty,max=1000"`
	IdempotencyKey        string           `json:"-"`
}

// ListFilter narrows sale listings.
type ListFilter struct {
	PaymentMethod PaymentMethod
	CustomerID    *uuid.UUID
	From          *time.Time
	To            *time.Time
	Search        string
	Page          int
	PerPage       int
}

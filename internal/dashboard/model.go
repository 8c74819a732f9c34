// Package dashboard derives the home screen aggregates of an account from its
// sales and catalogue.
package dashboard

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WindowDays is the length of the rolling window, today included.
const WindowDays = 7

// DefaultTopN is how many products the top lists carry by default.
const DefaultTopN = 5

// RecentLimit is how many recent sales are listed.
const RecentLimit = 5

// Sale is the part of a sale the folds read.
type Sale struct {
	ID            uuid.UUID       `json:"id"`
	SaleNumber    string          `json:"sale_number"`
	CustomerName  *string         `json:"customer_name,omitempty"`
	Total         decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	SaleDate      time.Time       `json:"sale_date"`
	Items         []Item          `json:"-"`
}

// Item is one sold line. ProductID is nil once the product was deleted.
type Item struct {
	ProductID *uuid.UUID
	Name      string
	Quantity  int
	Subtotal  decimal.Decimal
}

// Period holds revenue and order count over a span of days.
type Period struct {
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// DayPoint is one day of the sales series.
type DayPoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// TopProduct aggregates the sold quantity and revenue of a product.
type TopProduct struct {
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// LowStockItem is an active product at or under its minimum.
type LowStockItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	SKU       *string   `json:"sku,omitempty"`
	Stock     int       `json:"stock"`
	MinStock  int       `json:"min_stock"`
}

// RecentSale is a row of the recent sales list.
type RecentSale struct {
	ID            uuid.UUID       `json:"id"`
	SaleNumber    string          `json:"sale_number"`
	CustomerName  *string         `json:"customer_name,omitempty"`
	Total         decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	ItemCount     int             `json:"item_count"`
	SaleDate      time.Time       `json:"sale_date"`
}

// Dashboard is the computed home screen.
type Dashboard struct {
	Today         Period          `json:"today"`
	LastSevenDays Period          `json:"last_seven_days"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	TopByQuantity []TopProduct    `json:"top_by_quantity"`
	TopByRevenue  []TopProduct    `json:"top_by_revenue"`
	LowStock      []LowStockItem  `json:"low_stock"`
	RecentSales   []RecentSale    `json:"recent_sales"`
	Series        []DayPoint      `json:"series"`
	ProductCount  int             `json:"product_count"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

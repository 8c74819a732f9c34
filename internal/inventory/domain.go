package inventory

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jassiaa29/pos-ventas-simple/internal/masterdata/products"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
)

// MaxStock is the largest stock the INTEGER stock column holds.
const MaxStock = math.MaxInt32

// Reason explains why stock moved.
type Reason string

const (
	// ReasonSale is written by checkout.
	ReasonSale Reason = "sale"
	// ReasonAdjustment indicates a manual correction.
	ReasonAdjustment Reason = "adjustment"
)

var (
	// ErrNotFound indicates the product does not exist for the account.
	ErrNotFound = fmt.Errorf("product: %w", httpx.ErrNotFound)
	// ErrNegativeStock indicates the adjustment would leave less than zero units.
	ErrNegativeStock = &httpx.ValidationError{Fields: map[string]string{"delta": "would make stock negative"}}
	// ErrInvalidQuantity indicates a zero delta.
	ErrInvalidQuantity = &httpx.ValidationError{Fields: map[string]string{"delta": "must not be zero"}}
	// ErrStockOverflow indicates the resulting stock does not fit the stock column.
	ErrStockOverflow = &httpx.ValidationError{Fields: map[string]string{"delta": "would exceed the maximum stock"}}
)

// Movement is one row of the stock ledger of a product.
type Movement struct {
	ID         int64     `json:"id"`
	AccountID  uuid.UUID `json:"-"`
	ProductID  uuid.UUID `json:"product_id"`
	Delta      int       `json:"delta"`
	StockAfter int       `json:"stock_after"`
	Reason     Reason    `json:"reason"`
	Reference  *string   `json:"reference,omitempty"`
	Note       *string   `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AdjustmentInput is a signed stock correction guarded by the product version.
type AdjustmentInput struct {
	Delta           int     `json:"delta" validate:"required"`
	ExpectedVersion int     `json:"version" validate:"required,gt=0"`
	Note            *string `json:"note,omitempty" validate:"omitempty,max=500"`
	Reference       *string `json:"reference,omitempty" validate:"omitempty,max=120"`
}

// AdjustmentResult reports the product state after an adjustment.
type AdjustmentResult struct {
	Product  StockItem `json:"product"`
	Movement Movement  `json:"movement"`
}

// StockItem is a product with its derived stock status.
type StockItem struct {
	products.Product
	StockStatus products.StockLevel `json:"stock_status"`
	StockValue  decimal.Decimal     `json:"stock_value"`
}

func newStockItem(p products.Product) StockItem {
	return StockItem{Product: p, StockStatus: p.StockLevel(), StockValue: p.StockValue()}
}

// Summary aggregates the stock of an account.
type Summary struct {
	ProductCount    int             `json:"product_count"`
	LowStockCount   int             `json:"low_stock_count"`
	OutOfStockCount int             `json:"out_of_stock_count"`
	StockValue      decimal.Decimal `json:"stock_value"`
}

// Summarize folds products into a Summary. Low counts only products that
// still have units; empty ones are counted as out of stock.
func Summarize(items []products.Product) Summary {
	sum := Summary{StockValue: decimal.Zero}
	for _, p := range items {
		sum.ProductCount++
		switch {
		case p.Stock <= 0:
			sum.OutOfStockCount++
		case p.Stock <= p.MinStock:
			sum.LowStockCount++
		}
		sum.StockValue = sum.StockValue.Add(p.StockValue())
	}
	return sum
}

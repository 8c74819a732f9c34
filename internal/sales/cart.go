package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/jassiaa29/pos-ventas-simple/internal/money"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
)

// ErrLineNotFound indicates the product is not in the cart.
var ErrLineNotFound = fmt.Errorf("cart line: %w", httpx.ErrNotFound)

// CartLine is a product in the cart. Quantity stays within [1, Product.Stock].
type CartLine struct {
	Product         ProductSnapshot `json:"product"`
	Quantity        int             `json:"quantity"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// Cart is the in-progress sale of one session.
type Cart struct {
	Lines                 []CartLine      `json:"lines"`
	GlobalDiscountPercent decimal.Decimal `json:"global_discount_percent"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{Lines: []CartLine{}, GlobalDiscountPercent: decimal.Zero}
}

// Add puts one unit of p in the cart. A product already present gains one
// unit, capped at its stock. Inactive or out of stock products are rejected.
func (c *Cart) Add(p ProductSnapshot) error {
	if !p.Sellable() {
		return ErrProductUnavailable
	}
	if i := c.index(p.ID); i >= 0 {
		line := &c.Lines[i]
		line.Product = p
		line.Quantity = clampQuantity(line.Quantity+1, p.Stock)
		return nil
	}
	c.Lines = append(c.Lines, CartLine{Product: p, Quantity: 1, DiscountPercent: decimal.Zero})
	return nil
}

// SetQuantity sets the quantity of a line. q <= 0 removes the line; other
// values are clamped to [1, stock].
func (c *Cart) SetQuantity(productID uuid.UUID, q int) error {
	i := c.index(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	if q <= 0 {
		c.removeAt(i)
		return nil
	}
	c.Lines[i].Quantity = clampQuantity(q, c.Lines[i].Product.Stock)
	return nil
}

// SetDiscount sets the per-line discount, clamped to [0,100].
func (c *Cart) SetDiscount(productID uuid.UUID, pct decimal.Decimal) error {
	i := c.index(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	c.Lines[i].DiscountPercent = money.ClampPercent(pct)
	return nil
}

// SetGlobalDiscount sets the sale-wide discount. Values outside [0,100] are rejected.
func (c *Cart) SetGlobalDiscount(pct decimal.Decimal) error {
	if !money.ValidPercent(pct) {
		return httpx.NewValidationError("global_discount_percent", "must be between 0 and 100")
	}
	c.GlobalDiscountPercent = pct
	return nil
}

// Remove drops the line of productID; it reports whether a line was removed.
func (c *Cart) Remove(productID uuid.UUID) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	return true
}

// Clear empties the cart and resets the global discount.
func (c *Cart) Clear() {
	c.Lines = []CartLine{}
	c.GlobalDiscountPercent = decimal.Zero
}

// ItemCount is the number of units in the cart.
func (c *Cart) ItemCount() int {
	n := 0
	for _, line := range c.Lines {
		n += line.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Totals prices the cart.
func (c *Cart) Totals() (Totals, error) {
	lines := make([]Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, Line{UnitPrice: l.Product.Price, Quantity: l.Quantity, DiscountPercent: l.DiscountPercent})
	}
	return ComputeTotals(lines, c.GlobalDiscountPercent)
}

// CheckoutLines converts the cart into checkout input.
func (c *Cart) CheckoutLines() []CheckoutLine {
	out := make([]CheckoutLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		out = append(out, CheckoutLine{ProductID: l.Product.ID, Quantity: l.Quantity, DiscountPercent: l.DiscountPercent})
	}
	return out
}

func (c *Cart) index(productID uuid.UUID) int {
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}

func clampQuantity(q, stock int) int {
	if q > stock {
		q = stock
	}
	if q < 1 {
		q = 1
	}
	return q
}

// MatchSKU finds the sellable product whose SKU equals code under Unicode
// case folding. Partial matches never count.
func MatchSKU(code string, products []ProductSnapshot) (ProductSnapshot, bool) {
	want := foldSKU(code)
	if want == "" {
		return ProductSnapshot{}, false
	}
	for _, p := range products {
		if !p.Sellable() || p.SKU == "" {
			continue
		}
		if foldSKU(p.SKU) == want {
			return p, true
		}
	}
	return ProductSnapshot{}, false
}

// foldSKU returns the full case folding of a trimmed SKU, so "STRASSE" and
// "straße" compare equal.
func foldSKU(sku string) string {
	return cases.Fold().String(strings.TrimSpace(sku))
}

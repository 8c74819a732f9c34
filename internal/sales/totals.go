package sales

import (
	"github.com/shopspring/decimal"

	"github.com/jassiaa29/pos-ventas-simple/internal/money"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
)

// Line is the pricing input of one cart or checkout line.
type Line struct {
	UnitPrice       decimal.Decimal
	Quantity        int
	DiscountPercent decimal.Decimal
}

// LineTotals is the priced result of one Line.
type LineTotals struct {
	Gross    decimal.Decimal `json:"gross"`
	Discount decimal.Decimal `json:"discount"`
	Net      decimal.Decimal `json:"net"`
}

// Totals is the priced result of a whole sale.
type Totals struct {
	Subtotal              decimal.Decimal `json:"subtotal"`
	ItemDiscounts         decimal.Decimal `json:"item_discounts"`
	GlobalDiscountPercent decimal.Decimal `json:"global_discount_percent"`
	GlobalDiscountAmount  decimal.Decimal `json:"global_discount_amount"`
	Total                 decimal.Decimal `json:"total"`
	ItemCount             int             `json:"item_count"`
	Lines                 []LineTotals    `json:"lines"`
}

var hundred = decimal.NewFromInt(100)

// CalculateLineTotals prices one line. The per-line discount is clamped to
// [0,100] and rounded for display; sale totals use the unrounded amount.
func CalculateLineTotals(line Line) LineTotals {
	gross, _ := lineAmounts(line)
	discount := money.PercentOf(gross, money.ClampPercent(line.DiscountPercent))
	return LineTotals{Gross: gross, Discount: discount, Net: gross.Sub(discount)}
}

func lineAmounts(line Line) (gross, discount decimal.Decimal) {
	gross = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	return gross, gross.Mul(money.ClampPercent(line.DiscountPercent)).Div(hundred)
}

// ComputeTotals prices lines and applies the global discount to what is left
// after item discounts. A global discount outside [0,100] is rejected.
//
// Discounts are accumulated unrounded and each derived amount is rounded
// once, so a discount shared by every line gives
// total = round(subtotal × (1−d/100) × (1−g/100)).
func ComputeTotals(lines []Line, globalDiscount decimal.Decimal) (Totals, error) {
	if !money.ValidPercent(globalDiscount) {
		return Totals{}, httpx.NewValidationError("global_discount_percent", "must be between 0 and 100")
	}
	out := Totals{
		Subtotal:              decimal.Zero,
		GlobalDiscountPercent: globalDiscount,
		Lines:                 make([]LineTotals, 0, len(lines)),
	}
	itemDiscounts := decimal.Zero
	for _, line := range lines {
		out.Lines = append(out.Lines, CalculateLineTotals(line))
		gross, discount := lineAmounts(line)
		out.Subtotal = out.Subtotal.Add(gross)
		itemDiscounts = itemDiscounts.Add(discount)
		out.ItemCount += line.Quantity
	}
	remaining := out.Subtotal.Sub(itemDiscounts)
	afterItems := money.Round(remaining)
	out.ItemDiscounts = out.Subtotal.Sub(afterItems)
	out.Total = money.Round(remaining.Sub(remaining.Mul(globalDiscount).Div(hundred)))
	out.GlobalDiscountAmount = afterItems.Sub(out.Total)
	return out, nil
}

// ChangeDue validates cash tendered for a payment and returns the change.
// Card payments never produce change and ignore cash received.
func ChangeDue(method PaymentMethod, cashReceived *decimal.Decimal, total decimal.Decimal) (*decimal.Decimal, error) {
	if method != PaymentCash {
		return nil, nil
	}
	if cashReceived == nil {
		return nil, ErrInsufficientCash
	}
	if cashReceived.LessThan(total) {
		return nil, ErrInsufficientCash
	}
	change := money.Round(cashReceived.Sub(total))
	return &change, nil
}

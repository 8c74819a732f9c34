// Package money holds the rounding and percentage rules shared by totals,
// reports and receipts.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places money is rounded to.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Zero is a zero amount.
var Zero = decimal.Zero

// Round rounds half away from zero to two places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// ClampPercent limits p to [0, 100].
func ClampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// ValidPercent reports whether p lies in [0, 100].
func ValidPercent(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}

// PercentOf returns round2(amount × pct / 100).
func PercentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(pct).Div(hundred))
}

// Share returns part/whole as a percentage rounded to two places, or zero for an empty whole.
func Share(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return Round(part.Mul(hundred).Div(whole))
}

// Format renders amount with two decimals, prefixed by the currency code when given.
func Format(amount decimal.Decimal, currency string) string {
	s := amount.StringFixed(Places)
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return s
	}
	if sym, ok := symbols[strings.ToUpper(currency)]; ok {
		return sym + s
	}
	return strings.ToUpper(currency) + " " + s
}

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"MXN": "$",
	"ARS": "$",
	"COP": "$",
	"CLP": "$",
	"GBP": "£",
}

package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRoundHalfAwayFromZero(t *testing.T) {
	assert.True(t, Round(d("2.345")).Equal(d("2.35")))
	assert.True(t, Round(d("2.344")).Equal(d("2.34")))
	assert.True(t, Round(d("-2.345")).Equal(d("-2.35")))
}

func TestClampPercent(t *testing.T) {
	assert.True(t, ClampPercent(d("-5")).IsZero())
	assert.True(t, ClampPercent(d("150")).Equal(d("100")))
	assert.True(t, ClampPercent(d("12.5")).Equal(d("12.5")))
}

func TestValidPercent(t *testing.T) {
	assert.True(t, ValidPercent(d("0")))
	assert.True(t, ValidPercent(d("100")))
	assert.False(t, ValidPercent(d("100.01")))
	assert.False(t, ValidPercent(d("-0.01")))
}

func TestPercentOfAndShare(t *testing.T) {
	assert.True(t, PercentOf(d("200"), d("10")).Equal(d("20")))
	assert.True(t, PercentOf(d("33.33"), d("15")).Equal(d("5")))
	assert.True(t, Share(d("25"), d("200")).Equal(d("12.5")))
	assert.True(t, Share(d("1"), decimal.Zero).IsZero())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$171.00", Format(d("171"), "USD"))
	assert.Equal(t, "PEN 9.50", Format(d("9.5"), "pen"))
	assert.Equal(t, "0.00", Format(decimal.Zero, ""))
}

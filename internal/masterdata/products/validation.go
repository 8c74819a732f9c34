package products

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
)

func (s *Service) validate(p Product) error {
	fields := map[string]string{}
	if strings.TrimSpace(p.Name) == "" {
		fields["name"] = "product name is required"
	}
	if p.Price.IsNegative() {
		fields["price"] = "must not be negative"
	}
	if p.Cost.IsNegative() {
		fields["cost"] = "must not be negative"
	}
	if p.Stock < 0 {
		fields["stock"] = "must not be negative"
	}
	if p.MinStock < 0 {
		fields["min_stock"] = "must not be negative"
	}
	if !p.Status.Valid() {
		fields["status"] = "must be one of active inactive"
	}
	if p.Price.GreaterThanOrEqual(maxAmount) {
		fields["price"] = "is too large"
	}
	if p.Cost.GreaterThanOrEqual(maxAmount) {
		fields["cost"] = "is too large"
	}
	if len(fields) > 0 {
		return &httpx.ValidationError{Fields: fields}
	}
	return nil
}

// maxAmount is the first value NUMERIC(12,2) cannot hold.
var maxAmount = decimal.New(1, 10)

func cleanSKU(sku *string) *string {
	if sku == nil {
		return nil
	}
	v := strings.TrimSpace(*sku)
	if v == "" {
		return nil
	}
	return &v
}

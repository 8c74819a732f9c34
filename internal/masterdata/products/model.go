package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status of a product.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// StockLevel classifies the stock of a product.
type StockLevel string

const (
	StockOK  StockLevel = "ok"
	StockLow StockLevel = "low"
	StockOut StockLevel = "out"
)

// Product represents a product entity
type Product struct {
	ID           uuid.UUID       `json:"id"`
	AccountID    uuid.UUID       `json:"-"`
	CategoryID   *uuid.UUID      `json:"category_id,omitempty"`
	CategoryName *string         `json:"category_name,omitempty"`
	Name         string          `json:"name"`
	SKU          *string         `json:"sku,omitempty"`
	Description  *string         `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Cost         decimal.Decimal `json:"cost"`
	Stock        int             `json:"stock"`
	MinStock     int             `json:"min_stock"`
	Status       Status          `json:"status"`
	Version      int             `json:"version"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// StockLevel reports out when nothing is left, low at or under the minimum.
func (p Product) StockLevel() StockLevel {
	switch {
	case p.Stock <= 0:
		return StockOut
	case p.Stock <= p.MinStock:
		return StockLow
	default:
		return StockOK
	}
}

// IsLowStock reports whether an active product is at or below its minimum.
// Out of stock products count as low.
func (p Product) IsLowStock() bool {
	return p.Status == StatusActive && p.Stock <= p.MinStock
}

// StockValue is price times units on hand.
func (p Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
}

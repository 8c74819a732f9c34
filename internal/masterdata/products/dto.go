package products

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	SKU         *string         `json:"sku,omitempty" validate:"omitempty,max=64"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	Stock       int             `json:"stock" validate:"gte=0"`
	MinStock    *int            `json:"min_stock,omitempty" validate:"omitempty,gte=0"`
	Status      Status          `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

// UpdateProductRequest changes the given fields when Version still matches.
// ClearCategory removes the category and wins over CategoryID.
type UpdateProductRequest struct {
	Version       int              `json:"version" validate:"required,gt=0"`
	Name          *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	SKU           *string          `json:"sku,omitempty" validate:"omitempty,max=64"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	CategoryID    *uuid.UUID       `json:"category_id,omitempty"`
	ClearCategory bool             `json:"clear_category,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	Cost          *decimal.Decimal `json:"cost,omitempty"`
	Stock         *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	MinStock      *int             `json:"min_stock,omitempty" validate:"omitempty,gte=0"`
	Status        *Status          `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

// Package settings holds the business profile of an account.
package settings

import (
	"time"

	"github.com/google/uuid"
)

const (
	defaultCurrency = "USD"
	// DefaultMinStock applies when an account has no settings row yet.
	DefaultMinStock = 5
)

// Settings is the business profile shown and edited on the settings screen.
type Settings struct {
	AccountID       uuid.UUID `json:"account_id"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	BusinessName    string    `json:"business_name"`
	Phone           string    `json:"phone"`
	Currency        string    `json:"currency"`
	DefaultMinStock int       `json:"default_min_stock"`
	ReceiptFooter   string    `json:"receipt_footer"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UpdateRequest changes the provided fields only.
type UpdateRequest struct {
	FullName        *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=120"`
	BusinessName    *string `json:"business_name,omitempty" validate:"omitempty,max=120"`
	Phone           *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Currency        *string `json:"currency,omitempty" validate:"omitempty,iso4217"`
	DefaultMinStock *int    `json:"default_min_stock,omitempty" validate:"omitempty,min=0,max=100000"`
	ReceiptFooter   *string `json:"receipt_footer,omitempty" validate:"omitempty,max=500"`
}

func (r UpdateRequest) apply(s Settings) Settings {
	if r.FullName != nil {
		s.FullName = *r.FullName
	}
	if r.BusinessName != nil {
		s.BusinessName = *r.BusinessName
	}
	if r.Phone != nil {
		s.Phone = *r.Phone
	}
	if r.Currency != nil {
		s.Currency = *r.Currency
	}
	if r.DefaultMinStock != nil {
		s.DefaultMinStock = *r.DefaultMinStock
	}
	if r.ReceiptFooter != nil {
		s.ReceiptFooter = *r.ReceiptFooter
	}
	return s
}

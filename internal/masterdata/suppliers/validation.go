package suppliers

import (
	"strings"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
)

func (s *Service) validate(sp Supplier) error {
	if strings.TrimSpace(sp.Name) == "" {
		return httpx.NewValidationError("name", "supplier name is required")
	}
	return nil
}

func optional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

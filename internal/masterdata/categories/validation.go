package categories

import (
	"strings"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
)

func (s *Service) validate(c Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return httpx.NewValidationError("name", "category name is required")
	}
	return nil
}

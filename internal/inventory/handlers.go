package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/jassiaa29/pos-ventas-simple/internal/masterdata/products"
	mdshared "github.com/jassiaa29/pos-ventas-simple/internal/masterdata/shared"
	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

// Catalog lists products with the catalogue filters.
type Catalog interface {
	List(ctx context.Context, accountID uuid.UUID, filters mdshared.ListFilters) ([]products.Product, int, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

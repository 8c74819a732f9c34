package shared

import (
	"fmt"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
)

var (
	ErrNotFound        = httpx.ErrNotFound
	ErrDuplicate       = fmt.Errorf("%w: duplicate entry", httpx.ErrConflict)
	ErrVersionConflict = fmt.Errorf("%w: record was modified by someone else, reload and retry", httpx.ErrConflict)
	ErrInvalidID       = httpx.NewValidationError("id", "must be a valid id")
)

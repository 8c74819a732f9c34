package shared

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
)

// ListFilters represents standard list page filters
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string
	Status  string

	// Entity specific filters
	CategoryID *uuid.UUID
	Stock      string
}

// Offset returns the row offset of the requested page.
func (f ListFilters) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// FiltersFromRequest reads page, limit, search, sort, dir, status, category_id
// and stock from the query string.
func FiltersFromRequest(r *http.Request) (ListFilters, error) {
	q := r.URL.Query()
	f := ListFilters{
		Page:    httpx.QueryInt(r, "page", DefaultPage),
		Limit:   httpx.QueryInt(r, "limit", DefaultLimit),
		Search:  strings.TrimSpace(q.Get("search")),
		SortBy:  q.Get("sort"),
		SortDir: strings.ToLower(q.Get("dir")),
		Status:  q.Get("status"),
		Stock:   q.Get("stock"),
	}
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if raw := q.Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return ListFilters{}, httpx.NewValidationError("category_id", "must be a valid id")
		}
		f.CategoryID = &id
	}
	return f, nil
}

// SortDirection renders dir as SQL, defaulting to fallback.
func SortDirection(dir, fallback string) string {
	switch dir {
	case SortAsc:
		return "ASC"
	case SortDesc:
		return "DESC"
	}
	if fallback == SortDesc {
		return "DESC"
	}
	return "ASC"
}

// CacheInvalidator drops cached aggregates after catalogue changes.
type CacheInvalidator interface {
	Bump(ctx context.Context, accountID uuid.UUID) error
}

package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
)

func TestFiltersFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/?page=3&limit=500&search=%20mouse%20&dir=DESC&stock=low", nil)
	f, err := FiltersFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 100, f.Limit)
	assert.Equal(t, "mouse", f.Search)
	assert.Equal(t, SortDesc, f.SortDir)
	assert.Equal(t, "low", f.Stock)
	assert.Equal(t, 200, f.Offset())

	f, err = FiltersFromRequest(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultPage, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Zero(t, f.Offset())

	_, err = FiltersFromRequest(httptest.NewRequest("GET", "/?category_id=7", nil))
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestSortDirection(t *testing.T) {
	assert.Equal(t, "DESC", SortDirection("desc", SortAsc))
	assert.Equal(t, "ASC", SortDirection("", SortAsc))
	assert.Equal(t, "DESC", SortDirection("sideways", SortDesc))
}

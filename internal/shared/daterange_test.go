package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
)

func TestParseDateRange(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	r, err := ParseDateRange("2024-03-01", "2024-03-01", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), *r.From)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, loc), *r.To)

	r, err = ParseDateRange("", "", loc)
	require.NoError(t, err)
	assert.Nil(t, r.From)
	assert.Nil(t, r.To)

	_, err = ParseDateRange("03/01/2024", "", loc)
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = ParseDateRange("2024-03-05", "2024-03-01", loc)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

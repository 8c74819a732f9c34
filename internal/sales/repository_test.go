package sales

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type isoRecorder struct {
	iso pgx.TxIsoLevel
}

var errBeginRefused = errors.New("begin refused")

func (r *isoRecorder) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	r.iso = opts.IsoLevel
	return nil, errBeginRefused
}

// Overlapping checkouts must not hit serialization failures on the shared
// sale counter row.
func TestCheckoutTransactionIsReadCommitted(t *testing.T) {
	rec := &isoRecorder{}
	repo := &pgRepository{pool: rec}

	err := repo.WithTx(context.Background(), func(context.Context, TxRepository) error { return nil })

	require.ErrorIs(t, err, errBeginRefused)
	assert.Equal(t, pgx.ReadCommitted, rec.iso)
}

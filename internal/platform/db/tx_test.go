package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBeginner struct {
	opts pgx.TxOptions
}

var errNoConn = errors.New("no connection")

func (b *recordingBeginner) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	b.opts = opts
	return nil, errNoConn
}

func TestWithTxDefaultsToRepeatableRead(t *testing.T) {
	b := &recordingBeginner{}
	called := false
	err := WithTx(context.Background(), b, func(pgx.Tx) error { called = true; return nil })

	require.ErrorIs(t, err, errNoConn)
	assert.False(t, called)
	assert.Equal(t, pgx.RepeatableRead, b.opts.IsoLevel)
}

func TestWithTxOptionsPassesIsolation(t *testing.T) {
	b := &recordingBeginner{}
	err := WithTxOptions(context.Background(), b, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(pgx.Tx) error { return nil })

	require.ErrorIs(t, err, errNoConn)
	assert.Equal(t, pgx.ReadCommitted, b.opts.IsoLevel)
}

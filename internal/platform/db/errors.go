package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeSerialization       = "40001"
)

// Classify translates driver errors into the httpx sentinels. Errors that are
// not recognised are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return httpx.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", httpx.ErrConflict, constraintLabel(pgErr))
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: unknown reference %s", httpx.ErrValidation, constraintLabel(pgErr))
		case codeCheckViolation:
			return fmt.Errorf("%w: %s", httpx.ErrValidation, constraintLabel(pgErr))
		case codeSerialization:
			return fmt.Errorf("%w: concurrent update, retry", httpx.ErrConflict)
		}
	}
	return err
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

func constraintLabel(pgErr *pgconn.PgError) string {
	if pgErr.ConstraintName != "" {
		return pgErr.ConstraintName
	}
	return pgErr.Message
}

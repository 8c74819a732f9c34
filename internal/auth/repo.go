package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/db"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
)

var (
	// ErrNotFound indicates no account matches.
	ErrNotFound = fmt.Errorf("account: %w", httpx.ErrNotFound)
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = fmt.Errorf("%w: email already registered", httpx.ErrConflict)
)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	Create(ctx context.Context, account Account, defaultMinStock int) (*Account, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const accountColumns = `id, email, password_hash, full_name, business_name, phone, created_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.BusinessName, &a.Phone, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindByEmail fetches an account by email, case-insensitively.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE LOWER(email) = LOWER($1)`, email))
}

// FindByID fetches an account by id.
func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

// Create inserts the account and its default settings row together.
func (r *PGRepository) Create(ctx context.Context, account Account, defaultMinStock int) (*Account, error) {
	var created *Account
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		created, err = scanAccount(tx.QueryRow(ctx, `INSERT INTO accounts (email, password_hash, full_name, business_name, phone)
			VALUES ($1, $2, $3, $4, $5) RETURNING `+accountColumns,
			account.Email, account.PasswordHash, account.FullName, account.BusinessName, account.Phone))
		if err != nil {
			if db.IsUniqueViolation(err) {
				return ErrEmailTaken
			}
			return fmt.Errorf("insert account: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO account_settings (account_id, default_min_stock) VALUES ($1, $2)`,
			created.ID, defaultMinStock); err != nil {
			return fmt.Errorf("insert settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

var _ Repository = (*PGRepository)(nil)

package settings

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

// ErrNotFound indicates the account does not exist.
var ErrNotFound = fmt.Errorf("account: %w", httpx.ErrNotFound)

// Repository persists settings.
type Repository interface {
	Get(ctx context.Context, accountID uuid.UUID) (Settings, error)
	Save(ctx context.Context, s Settings) (Settings, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const selectSettings = `SELECT a.id, a.email, a.full_name, a.business_name, a.phone,
		COALESCE(s.currency, '` + defaultCurrency + `'), COALESCE(s.default_min_stock, 5),
		COALESCE(s.receipt_footer, ''), GREATEST(a.updated_at, COALESCE(s.updated_at, a.updated_at))
	FROM accounts a LEFT JOIN account_settings s ON s.account_id = a.id
	WHERE a.id = $1`

func get(ctx context.Context, q db.DBTX, accountID uuid.UUID) (Settings, error) {
	var s Settings
	err := q.QueryRow(ctx, selectSettings, accountID).Scan(&s.AccountID, &s.Email, &s.FullName, &s.BusinessName, &s.Phone,
		&s.Currency, &s.DefaultMinStock, &s.ReceiptFooter, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{}, ErrNotFound
		}
		return Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

func (r *repository) Get(ctx context.Context, accountID uuid.UUID) (Settings, error) {
	return get(ctx, r.pool, accountID)
}

// Save writes the profile columns of accounts and upserts account_settings.
func (r *repository) Save(ctx context.Context, s Settings) (Settings, error) {
	var out Settings
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE accounts SET full_name = $2, business_name = $3, phone = $4, updated_at = NOW()
			WHERE id = $1`, s.AccountID, s.FullName, s.BusinessName, s.Phone)
		if err != nil {
			return fmt.Errorf("update account: %w", db.Classify(err))
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx, `INSERT INTO account_settings (account_id, currency, default_min_stock, receipt_footer, updated_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (account_id) DO UPDATE SET currency = EXCLUDED.currency,
				default_min_stock = EXCLUDED.default_min_stock,
				receipt_footer = EXCLUDED.receipt_footer,
				updated_at = EXCLUDED.updated_at`,
			s.AccountID, s.Currency, s.DefaultMinStock, s.ReceiptFooter)
		if err != nil {
			return fmt.Errorf("upsert settings: %w", db.Classify(err))
		}
		out, err = get(ctx, tx, s.AccountID)
		return err
	})
	return out, err
}

package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jassiaa29/pos-ventas-simple/internal/masterdata/products"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/db"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	LockProduct(ctx context.Context, accountID, productID uuid.UUID) (products.Product, error)
	SetStock(ctx context.Context, accountID, productID uuid.UUID, stock int, at time.Time) (int, error)
	InsertMovement(ctx context.Context, m Movement) (int64, error)
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func scanProduct(row pgx.Row) (products.Product, error) {
	var p products.Product
	err := row.Scan(&p.ID, &p.AccountID, &p.CategoryID, &p.CategoryName, &p.Name, &p.SKU, &p.Description,
		&p.Price, &p.Cost, &p.Stock, &p.MinStock, &p.Status, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (t *txRepo) LockProduct(ctx context.Context, accountID, productID uuid.UUID) (products.Product, error) {
	p, err := scanProduct(t.tx.QueryRow(ctx, lockProductSQL, accountID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return products.Product{}, ErrNotFound
		}
		return products.Product{}, fmt.Errorf("lock product: %w", err)
	}
	return p, nil
}

// SetStock writes the new stock level and returns the bumped version.
func (t *txRepo) SetStock(ctx context.Context, accountID, productID uuid.UUID, stock int, at time.Time) (int, error) {
	var (
		version   int
		updatedAt time.Time
	)
	if err := t.tx.QueryRow(ctx, applyAdjustmentSQL, accountID, productID, stock, at).Scan(&version, &updatedAt); err != nil {
		return 0, fmt.Errorf("set stock: %w", db.Classify(err))
	}
	return version, nil
}

func (t *txRepo) InsertMovement(ctx context.Context, m Movement) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, insertMovementSQL,
		m.AccountID, m.ProductID, m.Delta, m.StockAfter, m.Reason, m.Reference, m.Note, m.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert movement: %w", db.Classify(err))
	}
	return id, nil
}

// Movements lists the newest movements of a product.
func (r *Repository) Movements(ctx context.Context, accountID, productID uuid.UUID, limit int) ([]Movement, error) {
	rows, err := r.pool.Query(ctx, listMovementsSQL, accountID, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.AccountID, &m.ProductID, &m.Delta, &m.StockAfter, &m.Reason, &m.Reference, &m.Note, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Summary aggregates stock counters in SQL.
func (r *Repository) Summary(ctx context.Context, accountID uuid.UUID) (Summary, error) {
	var sum Summary
	err := r.pool.QueryRow(ctx, summarySQL, accountID).
		Scan(&sum.ProductCount, &sum.LowStockCount, &sum.OutOfStockCount, &sum.StockValue)
	if err != nil {
		return Summary{}, fmt.Errorf("stock summary: %w", err)
	}
	return sum, nil
}

// LowStock returns active products at or under their minimum. A nil ids
// slice scans the whole catalogue.
func (r *Repository) LowStock(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) ([]products.Product, error) {
	var filter []string
	if ids != nil {
		filter = make([]string, len(ids))
		for i, id := range ids {
			filter[i] = id.String()
		}
	}
	rows, err := r.pool.Query(ctx, lowStockSQL, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	defer rows.Close()

	var out []products.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

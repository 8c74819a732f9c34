package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jassiaa29/pos-ventas-simple/internal/masterdata/shared"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/db"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
)

// ErrDuplicateSKU indicates another product of the account uses the SKU.
var ErrDuplicateSKU = &httpx.ValidationError{Fields: map[string]string{"sku": "already used by another product"}}

type Repository interface {
	List(ctx context.Context, accountID uuid.UUID, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, accountID, id uuid.UUID) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product, expectedVersion int) (Product, error)
	Delete(ctx context.Context, accountID, id uuid.UUID) error
	CategoryExists(ctx context.Context, accountID, categoryID uuid.UUID) (bool, error)
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const productColumns = `p.id, p.account_id, p.category_id, c.name, p.name, p.sku, p.description,
	p.price, p.cost, p.stock, p.min_stock, p.status, p.version, p.created_at, p.updated_at`

const productFrom = ` FROM products p LEFT JOIN categories c ON c.id = p.category_id`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.AccountID, &p.CategoryID, &p.CategoryName, &p.Name, &p.SKU, &p.Description,
		&p.Price, &p.Cost, &p.Stock, &p.MinStock, &p.Status, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// ApplyFilters adds the product list predicates to where.
func ApplyFilters(where *db.Where, filters shared.ListFilters) {
	if filters.Search != "" {
		where.Add("(p.name ILIKE ? OR p.sku ILIKE ?)", "%"+filters.Search+"%")
	}
	if filters.CategoryID != nil {
		where.Add("p.category_id = ?", *filters.CategoryID)
	}
	if filters.Status != "" {
		where.Add("p.status = ?", filters.Status)
	}
	switch StockLevel(filters.Stock) {
	case StockLow:
		where.Raw("p.stock <= p.min_stock")
	case StockOut:
		where.Add("p.stock = ?", 0)
	}
}

func (r *repository) List(ctx context.Context, accountID uuid.UUID, filters shared.ListFilters) ([]Product, int, error) {
	where := db.NewWhere("p.account_id", accountID)
	ApplyFilters(where, filters)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+productFrom+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := `SELECT ` + productColumns + productFrom + where.SQL() + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		query += ` LIMIT ` + where.Arg(filters.Limit) + ` OFFSET ` + where.Arg(filters.Offset())
	}

	rows, err := r.db.Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, accountID, id uuid.UUID) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+productFrom+` WHERE p.account_id = $1 AND p.id = $2`, accountID, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p Product) (Product, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (account_id, category_id, name, sku, description, price, cost, stock, min_stock, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, version, created_at, updated_at`,
		p.AccountID, p.CategoryID, p.Name, p.SKU, p.Description, p.Price, p.Cost, p.Stock, p.MinStock, string(p.Status),
	).Scan(&p.ID, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, classify(err)
	}
	return p, nil
}

func (r *repository) Update(ctx context.Context, p Product, expectedVersion int) (Product, error) {
	err := r.db.QueryRow(ctx, `
		UPDATE products
		SET category_id = $1, name = $2, sku = $3, description = $4, price = $5, cost = $6,
		    stock = $7, min_stock = $8, status = $9, version = version + 1, updated_at = NOW()
		WHERE account_id = $10 AND id = $11 AND version = $12
		RETURNING version, updated_at`,
		p.CategoryID, p.Name, p.SKU, p.Description, p.Price, p.Cost,
		p.Stock, p.MinStock, string(p.Status), p.AccountID, p.ID, expectedVersion,
	).Scan(&p.Version, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, r.missOrStale(ctx, p.AccountID, p.ID)
	}
	if err != nil {
		return Product{}, classify(err)
	}
	return p, nil
}

// missOrStale tells a missing row from a version mismatch after a guarded update hit no rows.
func (r *repository) missOrStale(ctx context.Context, accountID, id uuid.UUID) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE account_id = $1 AND id = $2)`, accountID, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return shared.ErrVersionConflict
}

func (r *repository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE account_id = $1 AND id = $2`, accountID, id)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) CategoryExists(ctx context.Context, accountID, categoryID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE account_id = $1 AND id = $2)`, accountID, categoryID).Scan(&exists)
	return exists, err
}

func classify(err error) error {
	if db.IsUniqueViolation(err) {
		return ErrDuplicateSKU
	}
	return db.Classify(err)
}

func sortOrder(sortBy, sortDir string) string {
	switch sortBy {
	case "name":
		return "p.name " + shared.SortDirection(sortDir, shared.SortAsc)
	case "sku":
		return "p.sku " + shared.SortDirection(sortDir, shared.SortAsc)
	case "price":
		return "p.price " + shared.SortDirection(sortDir, shared.SortAsc)
	case "stock":
		return "p.stock " + shared.SortDirection(sortDir, shared.SortAsc)
	case "created_at":
		return "p.created_at " + shared.SortDirection(sortDir, shared.SortDesc)
	default:
		return "p.created_at " + shared.SortDirection(sortDir, shared.SortDesc) + ", p.id"
	}
}

package categories

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

var (
	ErrNotFound      = fmt.Errorf("category: %w", httpx.ErrNotFound)
	ErrDuplicateName = &httpx.ValidationError{Fields: map[string]string{"name": "a category with this name already exists"}}
)

type Repository interface {
	List(ctx context.Context, accountID uuid.UUID, filters shared.ListFilters) ([]Category, int, error)
	Get(ctx context.Context, accountID, id uuid.UUID) (Category, error)
	Create(ctx context.Context, category Category) (Category, error)
	Update(ctx context.Context, category Category) (Category, error)
	Delete(ctx context.Context, accountID, id uuid.UUID) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const categorySelect = `SELECT c.id, c.account_id, c.name, c.description,
	(SELECT COUNT(*) FROM products p WHERE p.category_id = c.id) AS product_count,
	c.created_at, c.updated_at
	FROM categories c`

func scanCategory(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.AccountID, &c.Name, &c.Description, &c.ProductCount, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) List(ctx context.Context, accountID uuid.UUID, filters shared.ListFilters) ([]Category, int, error) {
	where := db.NewWhere("c.account_id", accountID)
	if filters.Search != "" {
		where.Add("c.name ILIKE ?", "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories c`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	query := categorySelect + where.SQL() + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		query += ` LIMIT ` + where.Arg(filters.Limit) + ` OFFSET ` + where.Arg(filters.Offset())
	}
	rows, err := r.db.Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, err
		}
		categories = append(categories, c)
	}
	return categories, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, accountID, id uuid.UUID) (Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx, categorySelect+` WHERE c.account_id = $1 AND c.id = $2`, accountID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, c Category) (Category, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO categories (account_id, name, description) VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`, c.AccountID, c.Name, c.Description).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Category{}, classify(err)
	}
	return c, nil
}

func (r *repository) Update(ctx context.Context, c Category) (Category, error) {
	err := r.db.QueryRow(ctx, `UPDATE categories SET name = $1, description = $2, updated_at = NOW()
		WHERE account_id = $3 AND id = $4 RETURNING updated_at`, c.Name, c.Description, c.AccountID, c.ID).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, classify(err)
	}
	return c, nil
}

// Delete removes the category; its products stay and lose the reference.
func (r *repository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE account_id = $1 AND id = $2`, accountID, id)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func classify(err error) error {
	if db.IsUniqueViolation(err) {
		return ErrDuplicateName
	}
	return db.Classify(err)
}

func sortOrder(sortBy, sortDir string) string {
	switch sortBy {
	case "created_at":
		return "c.created_at " + shared.SortDirection(sortDir, shared.SortDesc)
	default:
		return "c.name " + shared.SortDirection(sortDir, shared.SortAsc)
	}
}

package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/db"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

var ErrNotFound = fmt.Errorf("customer: %w", httpx.ErrNotFound)

type Repository interface {
	Get(ctx context.Context, accountID, id uuid.UUID) (*Customer, error)
	List(ctx context.Context, accountID uuid.UUID, req ListCustomersRequest) ([]Customer, int, error)
	Create(ctx context.Context, customer *Customer) error
	Update(ctx context.Context, accountID, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, accountID, id uuid.UUID) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const customerColumns = `id, account_id, name, email, phone, address, city, notes, created_at, updated_at`

// updatableColumns lists the columns Update may touch, in a stable order.
var updatableColumns = []string{"name", "email", "phone", "address", "city", "notes"}

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.AccountID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.City, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) Get(ctx context.Context, accountID, id uuid.UUID) (*Customer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE account_id = $1 AND id = $2`, accountID, id)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, accountID uuid.UUID, req ListCustomersRequest) ([]Customer, int, error) {
	where := db.NewWhere("account_id", accountID)
	if search := strings.TrimSpace(req.Search); search != "" {
		where.Add("(name ILIKE ? OR email ILIKE ? OR phone ILIKE ?)", "%"+search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	page := shared.NewPagination(req.Page, req.PerPage, total)
	limit := where.Arg(page.PerPage)
	offset := where.Arg(page.Offset())
	query := `SELECT ` + customerColumns + ` FROM customers` + where.SQL() +
		` ORDER BY created_at DESC, id LIMIT ` + limit + ` OFFSET ` + offset

	rows, err := r.db.Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := []Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	return customers, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, c *Customer) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO customers (account_id, name, email, phone, address, city, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		c.AccountID, c.Name, c.Email, c.Phone, c.Address, c.City, c.Notes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return db.Classify(err)
}

func (r *repository) Update(ctx context.Context, accountID, id uuid.UUID, updates map[string]any) error {
	sets := []string{"updated_at = NOW()"}
	var args []any
	for _, col := range updatableColumns {
		v, ok := updates[col]
		if !ok {
			continue
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	args = append(args, accountID, id)
	query := fmt.Sprintf("UPDATE customers SET %s WHERE account_id = $%d AND id = $%d",
		strings.Join(sets, ", "), len(args)-1, len(args))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE account_id = $1 AND id = $2`, accountID, id)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package suppliers

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

var ErrNotFound = fmt.Errorf("supplier: %w", httpx.ErrNotFound)

type Repository interface {
	List(ctx context.Context, accountID uuid.UUID, filters shared.ListFilters) ([]Supplier, int, error)
	Get(ctx context.Context, accountID, id uuid.UUID) (Supplier, error)
	Create(ctx context.Context, supplier Supplier) (Supplier, error)
	Update(ctx context.Context, supplier Supplier) (Supplier, error)
	Delete(ctx context.Context, accountID, id uuid.UUID) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const supplierColumns = `id, account_id, name, contact_name, email, phone, address, notes, created_at, updated_at`

func scanSupplier(row pgx.Row) (Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.AccountID, &s.Name, &s.ContactName, &s.Email, &s.Phone, &s.Address, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *repository) List(ctx context.Context, accountID uuid.UUID, filters shared.ListFilters) ([]Supplier, int, error) {
	where := db.NewWhere("account_id", accountID)
	if filters.Search != "" {
		where.Add("(name ILIKE ? OR contact_name ILIKE ? OR email ILIKE ?)", "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count suppliers: %w", err)
	}

	query := `SELECT ` + supplierColumns + ` FROM suppliers` + where.SQL() + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		query += ` LIMIT ` + where.Arg(filters.Limit) + ` OFFSET ` + where.Arg(filters.Offset())
	}
	rows, err := r.db.Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	suppliers := []Supplier{}
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, accountID, id uuid.UUID) (Supplier, error) {
	s, err := scanSupplier(r.db.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE account_id = $1 AND id = $2`, accountID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, ErrNotFound
	}
	return s, err
}

func (r *repository) Create(ctx context.Context, s Supplier) (Supplier, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO suppliers (account_id, name, contact_name, email, phone, address, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		s.AccountID, s.Name, s.ContactName, s.Email, s.Phone, s.Address, s.Notes,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Supplier{}, db.Classify(err)
	}
	return s, nil
}

func (r *repository) Update(ctx context.Context, s Supplier) (Supplier, error) {
	err := r.db.QueryRow(ctx, `
		UPDATE suppliers
		SET name = $1, contact_name = $2, email = $3, phone = $4, address = $5, notes = $6, updated_at = NOW()
		WHERE account_id = $7 AND id = $8
		RETURNING created_at, updated_at`,
		s.Name, s.ContactName, s.Email, s.Phone, s.Address, s.Notes, s.AccountID, s.ID,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, ErrNotFound
	}
	if err != nil {
		return Supplier{}, db.Classify(err)
	}
	return s, nil
}

func (r *repository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM suppliers WHERE account_id = $1 AND id = $2`, accountID, id)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func sortOrder(sortBy, sortDir string) string {
	switch sortBy {
	case "created_at":
		return "created_at " + shared.SortDirection(sortDir, shared.SortDesc)
	default:
		return "name " + shared.SortDirection(sortDir, shared.SortAsc)
	}
}

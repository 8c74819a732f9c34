package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jassiaa29/pos-ventas-simple/internal/masterdata/products"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/db"
)

// Source loads the collections the dashboard folds over.
type Source interface {
	SalesBetween(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]Sale, error)
	RecentSales(ctx context.Context, accountID uuid.UUID, limit int) ([]Sale, error)
	Products(ctx context.Context, accountID uuid.UUID) ([]products.Product, error)
}

// Repository reads dashboard inputs from PostgreSQL.
type Repository struct {
	db db.DBTX
}

// NewRepository constructs Repository.
func NewRepository(conn db.DBTX) *Repository {
	return &Repository{db: conn}
}

const dashboardSaleColumns = `s.id, s.sale_number, cu.name, s.total_amount, s.payment_method, s.status, s.sale_date
	FROM sales s LEFT JOIN customers cu ON cu.id = s.customer_id`

// SalesBetween returns sales of the account dated in [from, to).
func (r *Repository) SalesBetween(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]Sale, error) {
	rows, err := r.db.Query(ctx, `SELECT `+dashboardSaleColumns+`
		WHERE s.account_id = $1 AND s.sale_date >= $2 AND s.sale_date < $3
		ORDER BY s.sale_date DESC`, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("dashboard sales: %w", err)
	}
	return r.collect(ctx, rows)
}

// RecentSales returns the newest sales of the account.
func (r *Repository) RecentSales(ctx context.Context, accountID uuid.UUID, limit int) ([]Sale, error) {
	rows, err := r.db.Query(ctx, `SELECT `+dashboardSaleColumns+`
		WHERE s.account_id = $1 AND s.status = 'completed'
		ORDER BY s.sale_date DESC, s.created_at DESC
		LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent sales: %w", err)
	}
	return r.collect(ctx, rows)
}

func (r *Repository) collect(ctx context.Context, rows pgx.Rows) ([]Sale, error) {
	var out []Sale
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.SaleNumber, &s.CustomerName, &s.Total, &s.PaymentMethod, &s.Status, &s.SaleDate); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, len(out))
	index := make(map[uuid.UUID]int, len(out))
	for i := range out {
		ids[i] = out[i].ID.String()
		index[out[i].ID] = i
	}
	itemRows, err := r.db.Query(ctx, `SELECT sale_id, product_id, product_name, quantity, subtotal
		FROM sale_items WHERE sale_id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("dashboard sale items: %w", err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var (
			saleID uuid.UUID
			it     Item
		)
		if err := itemRows.Scan(&saleID, &it.ProductID, &it.Name, &it.Quantity, &it.Subtotal); err != nil {
			return nil, err
		}
		if i, ok := index[saleID]; ok {
			out[i].Items = append(out[i].Items, it)
		}
	}
	return out, itemRows.Err()
}

// Products returns the catalogue fields the dashboard reads.
func (r *Repository) Products(ctx context.Context, accountID uuid.UUID) ([]products.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT id, account_id, name, sku, price, stock, min_stock, status
		FROM products WHERE account_id = $1 ORDER BY name`, accountID)
	if err != nil {
		return nil, fmt.Errorf("dashboard products: %w", err)
	}
	defer rows.Close()
	var out []products.Product
	for rows.Next() {
		var p products.Product
		if err := rows.Scan(&p.ID, &p.AccountID, &p.Name, &p.SKU, &p.Price, &p.Stock, &p.MinStock, &p.Status); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

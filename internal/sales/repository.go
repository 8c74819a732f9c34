package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/db"
	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

// Repository is the read side of sales persistence plus the transaction entry point.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Sale, int, error)
	Get(ctx context.Context, accountID, id uuid.UUID) (*Sale, error)
	ProductSnapshots(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ProductSnapshot, error)
	ProductsBySKU(ctx context.Context, accountID uuid.UUID, code string) ([]ProductSnapshot, error)
}

// TxRepository exposes the writes of a checkout, all inside one transaction.
type TxRepository interface {
	NumberSource
	LockProducts(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ProductSnapshot, error)
	CustomerExists(ctx context.Context, accountID, id uuid.UUID) (bool, error)
	InsertSale(ctx context.Context, sale *Sale) error
	InsertItems(ctx context.Context, saleID uuid.UUID, items []SaleItem) error
	DecrementStock(ctx context.Context, accountID, productID uuid.UUID, qty int, reference string) (int, error)
}

type pgRepository struct {
	pool db.TxBeginner
	db   db.DBTX
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool, db: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in a read-committed transaction. Product rows are
// locked with FOR UPDATE and the sale counter upsert must see concurrent commits.
func (r *pgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTxOptions(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const saleColumns = `s.id, s.account_id, s.sale_number, s.customer_id, cu.name, s.subtotal, s.item_discount_amount,
	s.global_discount_percent, s.global_discount_amount, s.total_amount, s.payment_method, s.cash_received,
	s.change_due, s.status, s.notes, s.sale_date, s.created_at`

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.AccountID, &s.SaleNumber, &s.CustomerID, &s.CustomerName, &s.Subtotal, &s.ItemDiscountAmount,
		&s.GlobalDiscountPercent, &s.GlobalDiscountAmount, &s.TotalAmount, &s.PaymentMethod, &s.CashReceived,
		&s.ChangeDue, &s.Status, &s.Notes, &s.SaleDate, &s.CreatedAt)
	return s, err
}

func (r *pgRepository) List(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Sale, int, error) {
	where := db.NewWhere("s.account_id", accountID)
	if filter.PaymentMethod != "" {
		where.Add("s.payment_method = ?", string(filter.PaymentMethod))
	}
	if filter.CustomerID != nil {
		where.Add("s.customer_id = ?", *filter.CustomerID)
	}
	if filter.From != nil {
		where.Add("s.sale_date >= ?", *filter.From)
	}
	if filter.To != nil {
		where.Add("s.sale_date < ?", *filter.To)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		where.Add("(s.sale_number ILIKE ? OR cu.name ILIKE ?)", "%"+search+"%")
	}
	from := ` FROM sales s LEFT JOIN customers cu ON cu.id = s.customer_id`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+from+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	page := shared.NewPagination(filter.Page, filter.PerPage, total)
	limit := where.Arg(page.PerPage)
	offset := where.Arg(page.Offset())
	query := `SELECT ` + saleColumns + from + where.SQL() +
		` ORDER BY s.sale_date DESC, s.created_at DESC LIMIT ` + limit + ` OFFSET ` + offset

	rows, err := r.db.Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.attachItems(ctx, sales); err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

func (r *pgRepository) Get(ctx context.Context, accountID, id uuid.UUID) (*Sale, error) {
	row := r.db.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales s LEFT JOIN customers cu ON cu.id = s.customer_id
		WHERE s.account_id = $1 AND s.id = $2`, accountID, id)
	s, err := scanSale(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	sales := []Sale{s}
	if err := r.attachItems(ctx, sales); err != nil {
		return nil, err
	}
	return &sales[0], nil
}

func (r *pgRepository) attachItems(ctx context.Context, sales []Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]string, len(sales))
	index := make(map[uuid.UUID]int, len(sales))
	for i := range sales {
		ids[i] = sales[i].ID.String()
		index[sales[i].ID] = i
		sales[i].Items = []SaleItem{}
	}
	rows, err := r.db.Query(ctx, `SELECT id, sale_id, product_id, product_name, COALESCE(product_sku, ''), quantity,
			unit_price, discount_percent, discount_amount, subtotal
		FROM sale_items WHERE sale_id = ANY($1::uuid[]) ORDER BY created_at, id`, ids)
	if err != nil {
		return fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName, &it.ProductSKU, &it.Quantity,
			&it.UnitPrice, &it.DiscountPercent, &it.DiscountAmount, &it.Subtotal); err != nil {
			return err
		}
		if i, ok := index[it.SaleID]; ok {
			sales[i].Items = append(sales[i].Items, it)
		}
	}
	return rows.Err()
}

const snapshotQuery = `SELECT p.id, p.name, COALESCE(p.sku, ''), COALESCE(c.name, ''), p.price, p.stock, p.status = 'active'
	FROM products p LEFT JOIN categories c ON c.id = p.category_id`

func collectSnapshots(rows pgx.Rows) (map[uuid.UUID]ProductSnapshot, error) {
	defer rows.Close()
	out := make(map[uuid.UUID]ProductSnapshot)
	for rows.Next() {
		var p ProductSnapshot
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Category, &p.Price, &p.Stock, &p.Active); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func (r *pgRepository) ProductSnapshots(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ProductSnapshot, error) {
	rows, err := r.db.Query(ctx, snapshotQuery+` WHERE p.account_id = $1 AND p.id = ANY($2::uuid[])`, accountID, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return collectSnapshots(rows)
}

// ProductsBySKU returns the sellable products whose SKU folds to the same
// string as code. Folding can change the length of a string, so candidates
// are compared in Go rather than with LOWER().
func (r *pgRepository) ProductsBySKU(ctx context.Context, accountID uuid.UUID, code string) ([]ProductSnapshot, error) {
	want := foldSKU(code)
	if want == "" {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, snapshotQuery+` WHERE p.account_id = $1 AND p.status = 'active' AND p.stock > 0
		AND COALESCE(p.sku, '') <> ''`, accountID)
	if err != nil {
		return nil, fmt.Errorf("find products by sku: %w", err)
	}
	byID, err := collectSnapshots(rows)
	if err != nil {
		return nil, err
	}
	out := make([]ProductSnapshot, 0, 1)
	for _, p := range byID {
		if foldSKU(p.SKU) == want {
			out = append(out, p)
		}
	}
	return out, nil
}

// ============================================================================
// TRANSACTIONAL OPERATIONS
// ============================================================================

// AllocateSaleNumber calls generate_sale_number inside a savepoint so a
// failure leaves the checkout transaction usable for the fallback.
func (t *txRepo) AllocateSaleNumber(ctx context.Context, accountID uuid.UUID) (string, error) {
	var number string
	err := db.Savepoint(ctx, t.tx, func(sp pgx.Tx) error {
		return sp.QueryRow(ctx, `SELECT generate_sale_number($1)`, accountID).Scan(&number)
	})
	if err != nil {
		return "", fmt.Errorf("generate sale number: %w", err)
	}
	return number, nil
}

func (t *txRepo) LastSaleNumber(ctx context.Context, accountID uuid.UUID) (string, error) {
	var number string
	err := t.tx.QueryRow(ctx, `SELECT sale_number FROM sales WHERE account_id = $1
		ORDER BY created_at DESC, sale_date DESC LIMIT 1`, accountID).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errNoPreviousSale
		}
		return "", err
	}
	return number, nil
}

// AdvanceSaleCounter raises the account's counter to value when it is behind.
func (t *txRepo) AdvanceSaleCounter(ctx context.Context, accountID uuid.UUID, value int64) error {
	err := db.Savepoint(ctx, t.tx, func(sp pgx.Tx) error {
		_, err := sp.Exec(ctx, `INSERT INTO sale_counters (account_id, last_value) VALUES ($1, $2)
			ON CONFLICT (account_id) DO UPDATE SET last_value = GREATEST(sale_counters.last_value, EXCLUDED.last_value)`,
			accountID, value)
		return err
	})
	if err != nil {
		return fmt.Errorf("advance sale counter: %w", err)
	}
	return nil
}

func (t *txRepo) LockProducts(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ProductSnapshot, error) {
	rows, err := t.tx.Query(ctx, snapshotQuery+` WHERE p.account_id = $1 AND p.id = ANY($2::uuid[]) FOR UPDATE OF p`, accountID, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", db.Classify(err))
	}
	return collectSnapshots(rows)
}

func (t *txRepo) CustomerExists(ctx context.Context, accountID, id uuid.UUID) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM customers WHERE account_id = $1 AND id = $2)`, accountID, id).Scan(&exists)
	return exists, err
}

func (t *txRepo) InsertSale(ctx context.Context, sale *Sale) error {
	err := t.tx.QueryRow(ctx, `INSERT INTO sales (account_id, sale_number, customer_id, subtotal, item_discount_amount,
			global_discount_percent, global_discount_amount, total_amount, payment_method, cash_received, change_due,
			status, notes, sale_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at`,
		sale.AccountID, sale.SaleNumber, sale.CustomerID, sale.Subtotal, sale.ItemDiscountAmount,
		sale.GlobalDiscountPercent, sale.GlobalDiscountAmount, sale.TotalAmount, string(sale.PaymentMethod),
		sale.CashReceived, sale.ChangeDue, string(sale.Status), sale.Notes, sale.SaleDate,
	).Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateSaleNumber
		}
		return fmt.Errorf("insert sale: %w", db.Classify(err))
	}
	return nil
}

func (t *txRepo) InsertItems(ctx context.Context, saleID uuid.UUID, items []SaleItem) error {
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`INSERT INTO sale_items (sale_id, product_id, product_name, product_sku, quantity, unit_price,
				discount_percent, discount_amount, subtotal)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9) RETURNING id`,
			saleID, it.ProductID, it.ProductName, it.ProductSKU, it.Quantity, it.UnitPrice,
			it.DiscountPercent, it.DiscountAmount, it.Subtotal)
	}
	results := t.tx.SendBatch(ctx, batch)
	for i := range items {
		if err := results.QueryRow().Scan(&items[i].ID); err != nil {
			_ = results.Close()
			return fmt.Errorf("insert sale item: %w", db.Classify(err))
		}
		items[i].SaleID = saleID
	}
	return results.Close()
}

// DecrementStock removes qty units unless that would make stock negative, and
// records the movement. It returns the stock left.
func (t *txRepo) DecrementStock(ctx context.Context, accountID, productID uuid.UUID, qty int, reference string) (int, error) {
	var remaining int
	err := t.tx.QueryRow(ctx, `UPDATE products
		SET stock = stock - $3, version = version + 1, updated_at = $4
		WHERE account_id = $1 AND id = $2 AND stock >= $3
		RETURNING stock`, accountID, productID, qty, time.Now()).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: product %s", ErrInsufficientStock, productID)
		}
		return 0, fmt.Errorf("decrement stock: %w", db.Classify(err))
	}
	_, err = t.tx.Exec(ctx, `INSERT INTO stock_movements (account_id, product_id, delta, stock_after, reason, reference)
		VALUES ($1, $2, $3, $4, 'sale', $5)`, accountID, productID, -qty, remaining, reference)
	if err != nil {
		return 0, fmt.Errorf("record stock movement: %w", err)
	}
	return remaining, nil
}

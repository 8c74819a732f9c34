package inventory

const lockProductSQL = `SELECT id, account_id, category_id, NULL::text, name, sku, description,
	price, cost, stock, min_stock, status, version, created_at, updated_at
	FROM products WHERE account_id = $1 AND id = $2 FOR UPDATE`

const applyAdjustmentSQL = `UPDATE products
	SET stock = $3, version = version + 1, updated_at = $4
	WHERE account_id = $1 AND id = $2
	RETURNING version, updated_at`

const insertMovementSQL = `INSERT INTO stock_movements (account_id, product_id, delta, stock_after, reason, reference, note, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id`

const listMovementsSQL = `SELECT m.id, m.account_id, m.product_id, m.delta, m.stock_after, m.reason, m.reference, m.note, m.created_at
	FROM stock_movements m
	WHERE m.account_id = $1 AND m.product_id = $2
	ORDER BY m.created_at DESC, m.id DESC
	LIMIT $3`

const summarySQL = `SELECT COUNT(*),
	COUNT(*) FILTER (WHERE stock > 0 AND stock <= min_stock),
	COUNT(*) FILTER (WHERE stock <= 0),
	COALESCE(SUM(price * stock), 0)
	FROM products WHERE account_id = $1`

const lowStockSQL = `SELECT p.id, p.account_id, p.category_id, c.name, p.name, p.sku, p.description,
	p.price, p.cost, p.stock, p.min_stock, p.status, p.version, p.created_at, p.updated_at
	FROM products p LEFT JOIN categories c ON c.id = p.category_id
	WHERE p.account_id = $1 AND p.status = 'active' AND p.stock <= p.min_stock
	AND ($2::uuid[] IS NULL OR p.id = ANY($2))
	ORDER BY p.stock ASC, p.name ASC`

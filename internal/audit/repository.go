package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/db"
)

// PGRepository reads the trail from PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository wires the repository to a pool or transaction.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

// Timeline implements Repository.
func (r *PGRepository) Timeline(ctx context.Context, accountID uuid.UUID, filters TimelineFilters, offset, limit int) ([]TimelineRow, error) {
	where := db.NewWhere("account_id", accountID)
	if filters.Range.From != nil {
		where.Add("occurred_at >= ?", *filters.Range.From)
	}
	if filters.Range.To != nil {
		where.Add("occurred_at < ?", *filters.Range.To)
	}
	if filters.Entity != "" {
		where.Add("entity = ?", filters.Entity)
	}
	if filters.Action != "" {
		// "sale" matches "sale:checkout" and "sale:*".
		where.Add("(action = ? OR action LIKE ? || ':%')", filters.Action)
	}
	query := fmt.Sprintf(`SELECT id, occurred_at, action, entity, entity_id, meta
FROM audit_logs%s
ORDER BY occurred_at DESC, id DESC
LIMIT %s OFFSET %s`, where.SQL(), where.Arg(limit), where.Arg(offset))

	rows, err := r.db.Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TimelineRow
	for rows.Next() {
		var row TimelineRow
		var meta []byte
		if err := rows.Scan(&row.ID, &row.At, &row.Action, &row.Entity, &row.EntityID, &meta); err != nil {
			return nil, err
		}
		if len(meta) > 0 && string(meta) != "{}" {
			row.Meta = meta
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

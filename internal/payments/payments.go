// Package payments reports how sales were paid.
package payments

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jassiaa29/pos-ventas-simple/internal/money"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/db"
	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

// Methods lists every payment method, in display order.
var Methods = []string{"cash", "card"}

// MethodTotals is the raw aggregate of one payment method.
type MethodTotals struct {
	Method       string
	Count        int
	Total        decimal.Decimal
	CashReceived decimal.Decimal
	ChangeGiven  decimal.Decimal
}

// MethodSummary is MethodTotals plus the share of revenue.
type MethodSummary struct {
	Method       string          `json:"method"`
	Count        int             `json:"count"`
	Total        decimal.Decimal `json:"total"`
	Share        decimal.Decimal `json:"share_percent"`
	CashReceived decimal.Decimal `json:"cash_received"`
	ChangeGiven  decimal.Decimal `json:"change_given"`
}

// Summary reports sales per payment method over a date range.
type Summary struct {
	From    *time.Time      `json:"from,omitempty"`
	To      *time.Time      `json:"to,omitempty"`
	Count   int             `json:"count"`
	Total   decimal.Decimal `json:"total"`
	Methods []MethodSummary `json:"methods"`
}

// Summarize computes shares. Every known method is listed, zero filled.
func Summarize(rows []MethodTotals, r shared.DateRange) Summary {
	byMethod := make(map[string]MethodTotals, len(rows))
	total := decimal.Zero
	count := 0
	for _, row := range rows {
		acc, ok := byMethod[row.Method]
		if !ok {
			acc = MethodTotals{Method: row.Method, Total: decimal.Zero, CashReceived: decimal.Zero, ChangeGiven: decimal.Zero}
		}
		acc.Count += row.Count
		acc.Total = acc.Total.Add(row.Total)
		acc.CashReceived = acc.CashReceived.Add(row.CashReceived)
		acc.ChangeGiven = acc.ChangeGiven.Add(row.ChangeGiven)
		byMethod[row.Method] = acc
		total = total.Add(row.Total)
		count += row.Count
	}

	order := append([]string(nil), Methods...)
	var extra []string
	for method := range byMethod {
		if !known(method) {
			extra = append(extra, method)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	out := Summary{From: r.From, To: r.To, Count: count, Total: total, Methods: make([]MethodSummary, 0, len(order))}
	for _, method := range order {
		acc, ok := byMethod[method]
		if !ok {
			acc = MethodTotals{Method: method, Total: decimal.Zero, CashReceived: decimal.Zero, ChangeGiven: decimal.Zero}
		}
		out.Methods = append(out.Methods, MethodSummary{
			Method:       method,
			Count:        acc.Count,
			Total:        acc.Total,
			Share:        money.Share(acc.Total, total),
			CashReceived: acc.CashReceived,
			ChangeGiven:  acc.ChangeGiven,
		})
	}
	return out
}

func known(method string) bool {
	for _, m := range Methods {
		if m == method {
			return true
		}
	}
	return false
}

// Repository aggregates completed sales.
type Repository interface {
	Totals(ctx context.Context, accountID uuid.UUID, r shared.DateRange) ([]MethodTotals, error)
}

type repository struct {
	db db.DBTX
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

func (r *repository) Totals(ctx context.Context, accountID uuid.UUID, rng shared.DateRange) ([]MethodTotals, error) {
	where := db.NewWhere("account_id", accountID)
	where.Add("status = ?", "completed")
	if rng.From != nil {
		where.Add("sale_date >= ?", *rng.From)
	}
	if rng.To != nil {
		where.Add("sale_date < ?", *rng.To)
	}
	rows, err := r.db.Query(ctx, `SELECT payment_method, COUNT(*), COALESCE(SUM(total_amount), 0),
			COALESCE(SUM(cash_received), 0), COALESCE(SUM(change_due), 0)
		FROM sales`+where.SQL()+` GROUP BY payment_method`, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("payment totals: %w", err)
	}
	defer rows.Close()
	var out []MethodTotals
	for rows.Next() {
		var t MethodTotals
		if err := rows.Scan(&t.Method, &t.Count, &t.Total, &t.CashReceived, &t.ChangeGiven); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Service reports payment totals.
type Service struct {
	repo Repository
}

// NewService constructs Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Summary returns the per method summary of the account over r.
func (s *Service) Summary(ctx context.Context, accountID uuid.UUID, r shared.DateRange) (Summary, error) {
	rows, err := s.repo.Totals(ctx, accountID, r)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(rows, r), nil
}

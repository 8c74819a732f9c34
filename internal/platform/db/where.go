package db

import (
	"strconv"
	"strings"
)

// Where accumulates AND-ed predicates with positional arguments. Every query
// starts from the account filter so rows of other accounts are never visible.
type Where struct {
	clauses []string
	args    []any
}

// NewWhere starts a predicate list scoped to accountColumn = accountID.
func NewWhere(accountColumn string, accountID any) *Where {
	w := &Where{}
	w.Add(accountColumn+" = ?", accountID)
	return w
}

// Add appends clause, replacing each '?' with the placeholder of value.
func (w *Where) Add(clause string, value any) *Where {
	placeholder := w.Arg(value)
	w.clauses = append(w.clauses, strings.ReplaceAll(clause, "?", placeholder))
	return w
}

// Raw appends a clause that takes no arguments.
func (w *Where) Raw(clause string) *Where {
	w.clauses = append(w.clauses, clause)
	return w
}

// Arg registers value and returns its placeholder.
func (w *Where) Arg(value any) string {
	w.args = append(w.args, value)
	return "$" + strconv.Itoa(len(w.args))
}

// SQL renders the WHERE clause.
func (w *Where) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// Args returns the accumulated arguments.
func (w *Where) Args() []any {
	out := make([]any, len(w.args))
	copy(out, w.args)
	return out
}

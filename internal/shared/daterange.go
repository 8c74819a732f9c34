package shared

import (
	"strings"
	"time"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
)

const dateLayout = "2006-01-02"

// DateRange is a half-open [From, To) interval; nil bounds are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ParseDateRange reads YYYY-MM-DD bounds as local calendar days in loc. The
// upper bound is inclusive, so it is moved to the start of the next day.
func ParseDateRange(from, to string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.Local
	}
	var out DateRange
	if from = strings.TrimSpace(from); from != "" {
		t, err := time.ParseInLocation(dateLayout, from, loc)
		if err != nil {
			return DateRange{}, httpx.NewValidationError("from", "must be a date formatted YYYY-MM-DD")
		}
		out.From = &t
	}
	if to = strings.TrimSpace(to); to != "" {
		t, err := time.ParseInLocation(dateLayout, to, loc)
		if err != nil {
			return DateRange{}, httpx.NewValidationError("to", "must be a date formatted YYYY-MM-DD")
		}
		next := t.AddDate(0, 0, 1)
		out.To = &next
	}
	if out.From != nil && out.To != nil && !out.From.Before(*out.To) {
		return DateRange{}, httpx.NewValidationError("to", "must not be before from")
	}
	return out, nil
}

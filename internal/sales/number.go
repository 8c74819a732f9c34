package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	saleNumberPrefix = "V"
	saleNumberWidth  = 3
)

var saleNumberPattern = regexp.MustCompile(`^([A-Za-z]+)(\d+)$`)

// errNoPreviousSale is returned by NumberSource.LastSaleNumber for an account without sales.
var errNoPreviousSale = errors.New("no previous sale")

// NumberSource allocates sale numbers.
type NumberSource interface {
	// AllocateSaleNumber runs the database sequence for the account.
	AllocateSaleNumber(ctx context.Context, accountID uuid.UUID) (string, error)
	// LastSaleNumber returns the newest sale number of the account or errNoPreviousSale.
	LastSaleNumber(ctx context.Context, accountID uuid.UUID) (string, error)
	// AdvanceSaleCounter moves the sequence to at least value so it never
	// hands out a number the fallback already used.
	AdvanceSaleCounter(ctx context.Context, accountID uuid.UUID, value int64) error
}

// NextSaleNumber returns a sale number for accountID. It never fails: when
// the sequence is unavailable it increments the newest existing number, and
// as a last resort derives one from now.
func NextSaleNumber(ctx context.Context, src NumberSource, accountID uuid.UUID, now time.Time, logger *slog.Logger) string {
	number, err := src.AllocateSaleNumber(ctx, accountID)
	if err == nil && number != "" {
		return number
	}
	if logger != nil {
		logger.Warn("sale number sequence unavailable, using fallback", slog.Any("error", err), slog.String("account_id", accountID.String()))
	}

	last, err := src.LastSaleNumber(ctx, accountID)
	var next string
	switch {
	case errors.Is(err, errNoPreviousSale):
		next = FirstSaleNumber()
	case err != nil:
		return TimestampSaleNumber(now)
	default:
		next, err = IncrementSaleNumber(last)
		if err != nil {
			return TimestampSaleNumber(now)
		}
	}
	if value, ok := sequenceValue(next); ok {
		if err := src.AdvanceSaleCounter(ctx, accountID, value); err != nil && logger != nil {
			logger.Warn("advance sale counter", slog.Any("error", err), slog.String("account_id", accountID.String()))
		}
	}
	return next
}

// sequenceValue extracts the counter value of a number in the sequence's
// own format. Numbers with another prefix do not move the counter.
func sequenceValue(number string) (int64, bool) {
	m := saleNumberPattern.FindStringSubmatch(number)
	if m == nil || m[1] != saleNumberPrefix {
		return 0, false
	}
	n, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FirstSaleNumber is the number of an account's first sale.
func FirstSaleNumber() string {
	return fmt.Sprintf("%s%0*d", saleNumberPrefix, saleNumberWidth, 1)
}

// TimestampSaleNumber derives a number from now in unix milliseconds.
func TimestampSaleNumber(now time.Time) string {
	return saleNumberPrefix + strconv.FormatInt(now.UnixMilli(), 10)
}

// IncrementSaleNumber turns "V007" into "V008", keeping the prefix and the
// zero-padded width of the digits.
func IncrementSaleNumber(last string) (string, error) {
	m := saleNumberPattern.FindStringSubmatch(last)
	if m == nil {
		return "", fmt.Errorf("unrecognised sale number %q", last)
	}
	n, err := strconv.ParseUint(m[2], 10, 63)
	if err != nil {
		return "", fmt.Errorf("parse sale number %q: %w", last, err)
	}
	return fmt.Sprintf("%s%0*d", m[1], len(m[2]), n+1), nil
}

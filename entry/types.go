package entry

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Amount represents a numerical value with its associated currency. The value
// is an exact decimal; it must never be constructed directly from a binary
// float (convert through a string first to avoid representation error).
type Amount struct {
	Value    decimal.Decimal
	Currency string
}

// Neg returns the exact arithmetic negation of the amount.
func (a *Amount) Neg() *Amount {
	return &Amount{Value: a.Value.Neg(), Currency: a.Currency}
}

// String renders the amount for display, keeping at least two decimal places
// the way bank amounts are written.
func (a *Amount) String() string {
	return FormatDecimal(a.Value) + " " + a.Currency
}

// FormatDecimal renders a decimal with a minimum of two fractional digits.
// More precise values keep their full precision.
func FormatDecimal(d decimal.Decimal) string {
	if d.Exponent() < -2 {
		return d.String()
	}
	return d.StringFixed(2)
}

// Account represents a Beancount account name consisting of at least two
// colon-separated segments, the first being one of the five account
// categories.
type Account string

// Valid reports whether the account has a well-formed category prefix and at
// least one further segment.
func (a Account) Valid() bool {
	parts := strings.SplitN(string(a), ":", 2)
	if len(parts) < 2 || parts[1] == "" {
		return false
	}
	switch parts[0] {
	case "Assets", "Liabilities", "Equity", "Income", "Expenses":
		return true
	}
	return false
}

// Date represents a calendar date in ISO 8601 format (YYYY-MM-DD).
type Date struct {
	time.Time
}

// ParseDate parses a Hibiscus date string. The field must be exactly 10
// characters in YYYY-MM-DD form; anything else is an error that aborts the
// whole run (there is no per-row recovery).
func ParseDate(s string) (*Date, error) {
	if len(s) != 10 {
		return nil, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	return &Date{Time: t}, nil
}

// String returns the date in ISO 8601 format.
func (d *Date) String() string {
	return d.Format("2006-01-02")
}

// Metadata represents a key-value pair attached to an entry. The importer
// only ever emits string values, most notably the source record id under the
// "huid" key.
type Metadata struct {
	Key   string
	Value string
}

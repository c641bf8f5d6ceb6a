// Package source retrieves raw booking rows from a Hibiscus datastore.
//
// Two adapters exist: SQLiteSource queries a local embedded database
// read-only, RPCSource talks to a running Hibiscus server over XML-RPC. Both
// map their native column set onto the fixed Row schema, failing fast on
// mismatch, and yield rows ordered ascending by record id.
package source

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrSchemaMismatch is returned when the umsatz table does not expose the
// expected column set. This guards against silent schema drift.
var ErrSchemaMismatch = errors.New("unexpected umsatz schema")

// Row is one raw booking record in the fixed schema shared by both adapters.
// Amounts are exact decimals; Date stays the raw 10-character ISO string and
// is parsed during entry building.
type Row struct {
	ID               int64
	AccountID        int64
	Amount           decimal.Decimal
	Balance          decimal.Decimal
	Purpose          string
	Counterparty     string // counterparty account reference (empfaenger_konto)
	CounterpartyName string
	Date             string
}

// Filter restricts which rows a source yields. The zero value selects
// everything the account filter allows.
type Filter struct {
	// AccountIDs restricts rows to the given Hibiscus account ids.
	AccountIDs []int64

	// MaxRows caps the number of returned rows when > 0.
	MaxRows int

	// MinDate selects rows strictly after the given ISO date when non-empty.
	MinDate string

	// MinID selects rows with an id strictly greater than the given one
	// when > 0.
	MinID int64
}

// Source produces an ordered sequence of rows from a Hibiscus datastore.
type Source interface {
	// Fetch returns all rows matching the filter, ordered ascending by
	// record id. An empty result is not an error.
	Fetch(ctx context.Context, f Filter) ([]Row, error)

	// Ping verifies connectivity and schema without consuming rows.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}

// ParseDecimal converts a source value to an exact decimal. Values arrive in
// native form (float64/int64 from the database driver) or as locale-formatted
// strings using comma as decimal separator ("1.234,56" from the XML-RPC
// service). Native floats are converted through a string round-trip, never
// directly from the binary value, to avoid representation error.
func ParseDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return n, nil
	case float64:
		return decimal.NewFromString(strconv.FormatFloat(n, 'f', -1, 64))
	case int64:
		return decimal.NewFromInt(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case []byte:
		return decimal.NewFromString(normalizeNumber(string(n)))
	case string:
		return decimal.NewFromString(normalizeNumber(n))
	default:
		return decimal.Zero, fmt.Errorf("unsupported numeric value %T", v)
	}
}

// normalizeNumber rewrites a locale-formatted number into decimal point
// notation. The comma is only treated as a decimal separator when the value
// is not already a plain numeric literal; values like "1234.56" pass through
// unchanged.
func normalizeNumber(s string) string {
	if !strings.Contains(s, ",") {
		return s
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return s
	}
	// "1.234,56" -> "1234.56"
	s = strings.ReplaceAll(s, ".", "")
	return strings.Replace(s, ",", ".", 1)
}

// parseID converts a source id value to int64.
func parseID(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported id value %T", v)
	}
}

// asString converts a source text value to a string.
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(s)
	}
}

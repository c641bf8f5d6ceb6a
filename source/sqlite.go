package source

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// umsatzColumnCount is the number of columns the umsatz table is expected to
// expose. Any other count means the database is from an unknown Hibiscus
// version and the run must not proceed.
const umsatzColumnCount = 27

// umsatzColumns is the known umsatz schema, in table order. Only a handful of
// columns feed the fixed Row schema; the rest are carried by the table but
// ignored by the importer.
var umsatzColumns = []string{
	"id", "konto_id", "empfaenger_konto", "empfaenger_blz", "empfaenger_name",
	"betrag", "zweck", "zweck2", "zweck3", "datum", "valuta", "saldo",
	"primanota", "art", "customerref", "kommentar", "checksum", "flags",
	"gvcode", "added", "addkey", "txid", "purposecode", "endtoendid",
	"mandateid", "creditorid", "empfaenger_name2",
}

// SQLiteConfig holds the parameters for opening the embedded database.
type SQLiteConfig struct {
	// Path is the database file location.
	Path string

	// Key is the cipher key for a database encrypted at rest. Empty for an
	// unencrypted database.
	Key string
}

// SQLiteSource reads bookings from a local Hibiscus database file. The
// connection is read-only; the importer never mutates the bank data.
type SQLiteSource struct {
	db *sql.DB
}

var _ Source = &SQLiteSource{}

// OpenSQLite opens the embedded database read-only. A connection failure is
// fatal for the run and is not retried.
func OpenSQLite(cfg SQLiteConfig) (*SQLiteSource, error) {
	dsn := "file:" + cfg.Path + "?mode=ro"
	if cfg.Key != "" {
		dsn += "&_pragma=key(" + url.QueryEscape(cfg.Key) + ")"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Path, err)
	}

	// Single-shot batch job; one connection is all we ever use.
	db.SetMaxOpenConns(1)

	return &SQLiteSource{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// Ping verifies the connection and the umsatz schema.
func (s *SQLiteSource) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM umsatz LIMIT 0")
	if err != nil {
		return fmt.Errorf("umsatz table: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	if _, err := columnIndex(cols); err != nil {
		return err
	}
	return rows.Err()
}

// Fetch selects all bookings for the filtered accounts, ordered ascending by
// record id. The schema is validated before any row is consumed.
func (s *SQLiteSource) Fetch(ctx context.Context, f Filter) ([]Row, error) {
	query, args := buildQuery(f)
	log.Debug().Str("query", query).Msg("querying umsatz")

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query umsatz: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	idx, err := columnIndex(cols)
	if err != nil {
		return nil, err
	}

	var out []Row
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan umsatz row: %w", err)
		}
		row, err := rowFromColumns(values, idx)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch umsatz: %w", err)
	}

	log.Debug().Int("rows", len(out)).Msg("fetched umsatz rows")
	return out, nil
}

// buildQuery assembles the selection for the given filter. Results are always
// ordered ascending by id; date and id bounds are exclusive ("greater than").
func buildQuery(f Filter) (string, []any) {
	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT * FROM umsatz")

	var conds []string
	if len(f.AccountIDs) > 0 {
		placeholders := make([]string, len(f.AccountIDs))
		for i, id := range f.AccountIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		conds = append(conds, "konto_id IN ("+strings.Join(placeholders, ",")+")")
	}
	if f.MinDate != "" {
		conds = append(conds, "datum > ?")
		args = append(args, f.MinDate)
	}
	if f.MinID > 0 {
		conds = append(conds, "id > ?")
		args = append(args, f.MinID)
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	sb.WriteString(" ORDER BY id ASC")

	if f.MaxRows > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, f.MaxRows)
	}

	return sb.String(), args
}

// columnIndex lower-cases the native column names and maps the fields of the
// fixed Row schema onto their positions. A wrong column count or a missing
// required column is a schema error.
func columnIndex(cols []string) (map[string]int, error) {
	if len(cols) != umsatzColumnCount {
		return nil, fmt.Errorf("%w: %d columns, expected %d", ErrSchemaMismatch, len(cols), umsatzColumnCount)
	}

	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[strings.ToLower(c)] = i
	}

	for _, name := range []string{"id", "konto_id", "betrag", "saldo", "zweck", "empfaenger_konto", "empfaenger_name", "datum"} {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrSchemaMismatch, name)
		}
	}

	return idx, nil
}

// rowFromColumns maps one scanned record onto the fixed Row schema.
func rowFromColumns(values []any, idx map[string]int) (Row, error) {
	id, err := parseID(values[idx["id"]])
	if err != nil {
		return Row{}, fmt.Errorf("umsatz id: %w", err)
	}
	accountID, err := parseID(values[idx["konto_id"]])
	if err != nil {
		return Row{}, fmt.Errorf("umsatz %d: konto_id: %w", id, err)
	}
	amount, err := ParseDecimal(values[idx["betrag"]])
	if err != nil {
		return Row{}, fmt.Errorf("umsatz %d: betrag: %w", id, err)
	}
	balance, err := ParseDecimal(values[idx["saldo"]])
	if err != nil {
		return Row{}, fmt.Errorf("umsatz %d: saldo: %w", id, err)
	}

	return Row{
		ID:               id,
		AccountID:        accountID,
		Amount:           amount,
		Balance:          balance,
		Purpose:          asString(values[idx["zweck"]]),
		Counterparty:     asString(values[idx["empfaenger_konto"]]),
		CounterpartyName: asString(values[idx["empfaenger_name"]]),
		Date:             asString(values[idx["datum"]]),
	}, nil
}

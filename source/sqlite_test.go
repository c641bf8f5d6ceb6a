package source

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

// newFixtureDB creates an umsatz database with the full 27-column schema and
// returns its path.
func newFixtureDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hibiscus.db")
	db, err := sql.Open("sqlite", "file:"+path)
	assert.NoError(t, err)
	defer db.Close()

	defs := make([]string, len(umsatzColumns))
	for i, col := range umsatzColumns {
		switch col {
		case "id":
			defs[i] = "id INTEGER PRIMARY KEY"
		case "konto_id":
			defs[i] = "konto_id INTEGER"
		case "betrag", "saldo":
			defs[i] = col + " REAL"
		default:
			defs[i] = col + " TEXT DEFAULT ''"
		}
	}
	_, err = db.Exec("CREATE TABLE umsatz (" + strings.Join(defs, ", ") + ")")
	assert.NoError(t, err)

	return path
}

func insertBooking(t *testing.T, path string, id, accountID int64, amount, balance float64, purpose, counterparty, date string) {
	t.Helper()

	db, err := sql.Open("sqlite", "file:"+path)
	assert.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(
		"INSERT INTO umsatz (id, konto_id, betrag, saldo, zweck, empfaenger_konto, empfaenger_name, datum) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		id, accountID, amount, balance, purpose, counterparty, "Counter Corp", date,
	)
	assert.NoError(t, err)
}

func TestSQLiteFetch(t *testing.T) {
	path := newFixtureDB(t)
	insertBooking(t, path, 102, 7, -12.30, 137.70, "Lunch", "X2", "2024-03-02")
	insertBooking(t, path, 100, 7, -50.00, 150.00, "Coffee", "X1", "2024-03-01")
	insertBooking(t, path, 101, 9, -99.00, 1.00, "Out of scope", "X3", "2024-03-01")

	src, err := OpenSQLite(SQLiteConfig{Path: path})
	assert.NoError(t, err)
	defer src.Close()

	rows, err := src.Fetch(context.Background(), Filter{AccountIDs: []int64{7}})
	assert.NoError(t, err)

	// Ordered ascending by record id, scoped to konto 7.
	assert.Equal(t, 2, len(rows))
	assert.Equal(t, int64(100), rows[0].ID)
	assert.Equal(t, int64(102), rows[1].ID)

	assert.Equal(t, int64(7), rows[0].AccountID)
	assert.Equal(t, "Coffee", rows[0].Purpose)
	assert.Equal(t, "X1", rows[0].Counterparty)
	assert.Equal(t, "2024-03-01", rows[0].Date)
	assert.Equal(t, "-50", rows[0].Amount.String())
	assert.Equal(t, "150", rows[0].Balance.String())
}

func TestSQLiteFetchBounds(t *testing.T) {
	path := newFixtureDB(t)
	for i := int64(1); i <= 5; i++ {
		insertBooking(t, path, 100+i, 7, -1.00, 10.00, fmt.Sprintf("b%d", i), "X", fmt.Sprintf("2024-03-0%d", i))
	}

	src, err := OpenSQLite(SQLiteConfig{Path: path})
	assert.NoError(t, err)
	defer src.Close()

	t.Run("MinDateIsExclusive", func(t *testing.T) {
		rows, err := src.Fetch(context.Background(), Filter{AccountIDs: []int64{7}, MinDate: "2024-03-03"})
		assert.NoError(t, err)
		assert.Equal(t, 2, len(rows))
		assert.Equal(t, int64(104), rows[0].ID)
	})

	t.Run("MinIDIsExclusive", func(t *testing.T) {
		rows, err := src.Fetch(context.Background(), Filter{AccountIDs: []int64{7}, MinID: 103})
		assert.NoError(t, err)
		assert.Equal(t, 2, len(rows))
		assert.Equal(t, int64(104), rows[0].ID)
	})

	t.Run("MaxRows", func(t *testing.T) {
		rows, err := src.Fetch(context.Background(), Filter{AccountIDs: []int64{7}, MaxRows: 3})
		assert.NoError(t, err)
		assert.Equal(t, 3, len(rows))
		assert.Equal(t, int64(101), rows[0].ID)
	})

	t.Run("EmptyResultIsNotAnError", func(t *testing.T) {
		rows, err := src.Fetch(context.Background(), Filter{AccountIDs: []int64{999}})
		assert.NoError(t, err)
		assert.Equal(t, 0, len(rows))
	})
}

func TestSQLiteSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drifted.db")
	db, err := sql.Open("sqlite", "file:"+path)
	assert.NoError(t, err)
	_, err = db.Exec("CREATE TABLE umsatz (id INTEGER PRIMARY KEY, konto_id INTEGER, betrag REAL)")
	assert.NoError(t, err)
	assert.NoError(t, db.Close())

	src, err := OpenSQLite(SQLiteConfig{Path: path})
	assert.NoError(t, err)
	defer src.Close()

	_, err = src.Fetch(context.Background(), Filter{AccountIDs: []int64{7}})
	assert.IsError(t, err, ErrSchemaMismatch)

	assert.IsError(t, src.Ping(context.Background()), ErrSchemaMismatch)
}

func TestSQLitePing(t *testing.T) {
	path := newFixtureDB(t)

	src, err := OpenSQLite(SQLiteConfig{Path: path})
	assert.NoError(t, err)
	defer src.Close()

	assert.NoError(t, src.Ping(context.Background()))
}

func TestSQLitePingMissingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	db, err := sql.Open("sqlite", "file:"+path)
	assert.NoError(t, err)
	_, err = db.Exec("CREATE TABLE other (id INTEGER)")
	assert.NoError(t, err)
	assert.NoError(t, db.Close())

	src, err := OpenSQLite(SQLiteConfig{Path: path})
	assert.NoError(t, err)
	defer src.Close()

	assert.Error(t, src.Ping(context.Background()))
}

// Package mapping loads the reference table that maps Hibiscus account ids
// (and optional counterparty references) onto Beancount account names.
//
// The table is a small CSV file with a header line:
//
//	hibiscus_id,account,payee_ref
//	7,Assets:Bank:Checking,
//	8,Assets:Bank:Savings,DE02120300000000202051
//	# comment lines are skipped
//
// The third column is optional. When present it registers the counterparty
// account reference so that bookings against it are recognized as internal
// transfers.
package mapping

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/hibiscus/entry"
)

// ErrMalformedID is returned when an external account id is not a plain
// digits-only integer literal.
var ErrMalformedID = errors.New("malformed hibiscus account id")

// AccountMap maps a Hibiscus account id to a Beancount account name. It is
// built once per run and immutable afterwards.
type AccountMap map[int64]entry.Account

// PayeeMap maps a counterparty account reference to a Beancount account name.
// Absence of a match means the booking is external (single-leg).
type PayeeMap map[string]entry.Account

// IDs returns the mapped Hibiscus account ids in ascending order.
func (m AccountMap) IDs() []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Load reads the mapping table from path. A missing file or a malformed
// account id is a fatal configuration error.
func Load(path string) (AccountMap, PayeeMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("accounts file: %w", err)
	}
	defer f.Close()

	accounts, payees, err := Read(f)
	if err != nil {
		return nil, nil, fmt.Errorf("accounts file %s: %w", path, err)
	}
	return accounts, payees, nil
}

// Read parses the mapping table from r. The first line is a header and is
// skipped unconditionally, matching the reference table format.
func Read(r io.Reader) (AccountMap, PayeeMap, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	accounts := make(AccountMap)
	payees := make(PayeeMap)

	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		line++
		if line == 1 {
			// Header line.
			continue
		}
		if len(record) == 0 || record[0] == "" || record[0][0] == '#' {
			continue
		}
		if len(record) < 2 {
			return nil, nil, fmt.Errorf("line %d: expected at least 2 columns, got %d", line, len(record))
		}

		key := record[0]
		if !isDigits(key) {
			return nil, nil, fmt.Errorf("%w: %q", ErrMalformedID, key)
		}
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %q", ErrMalformedID, key)
		}

		account := entry.Account(record[1])
		if !account.Valid() {
			return nil, nil, fmt.Errorf("line %d: invalid account name %q", line, record[1])
		}
		accounts[id] = account

		if len(record) > 2 && record[2] != "" {
			payees[record[2]] = account
		}
	}

	return accounts, payees, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

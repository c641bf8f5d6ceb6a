package mapping_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/hibiscus/entry"
	"github.com/robinvdvleuten/hibiscus/mapping"
)

func TestRead(t *testing.T) {
	table := `hibiscus_id,account,payee_ref
7,Assets:Bank:Checking,
8,Assets:Bank:Savings,DE02120300000000202051
# 9 is closed and intentionally unmapped
12,Liabilities:Bank:Card,
`

	accounts, payees, err := mapping.Read(strings.NewReader(table))
	assert.NoError(t, err)

	assert.Equal(t, 3, len(accounts))
	assert.Equal(t, entry.Account("Assets:Bank:Checking"), accounts[7])
	assert.Equal(t, entry.Account("Assets:Bank:Savings"), accounts[8])
	assert.Equal(t, entry.Account("Liabilities:Bank:Card"), accounts[12])

	assert.Equal(t, 1, len(payees))
	assert.Equal(t, entry.Account("Assets:Bank:Savings"), payees["DE02120300000000202051"])
}

func TestReadTwoColumnRows(t *testing.T) {
	table := `hibiscus_id,account
7,Assets:Bank:Checking
`

	accounts, payees, err := mapping.Read(strings.NewReader(table))
	assert.NoError(t, err)
	assert.Equal(t, 1, len(accounts))
	assert.Equal(t, 0, len(payees))
}

func TestReadMalformedID(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"Letters", "abc"},
		{"Mixed", "12a"},
		{"Negative", "-7"},
		{"Float", "7.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := "hibiscus_id,account\n" + tt.key + ",Assets:Bank:Checking\n"
			_, _, err := mapping.Read(strings.NewReader(table))
			assert.IsError(t, err, mapping.ErrMalformedID)
		})
	}
}

func TestReadInvalidAccount(t *testing.T) {
	table := `hibiscus_id,account
7,NotAnAccount
`
	_, _, err := mapping.Read(strings.NewReader(table))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := mapping.Load(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.csv")
	err := os.WriteFile(path, []byte("hibiscus_id,account\n7,Assets:Bank:Checking\n"), 0o644)
	assert.NoError(t, err)

	accounts, _, err := mapping.Load(path)
	assert.NoError(t, err)
	assert.Equal(t, entry.Account("Assets:Bank:Checking"), accounts[7])
}

func TestAccountMapIDs(t *testing.T) {
	m := mapping.AccountMap{
		12: "Liabilities:Bank:Card",
		7:  "Assets:Bank:Checking",
		8:  "Assets:Bank:Savings",
	}
	assert.Equal(t, []int64{7, 8, 12}, m.IDs())
}

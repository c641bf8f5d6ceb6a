package entry_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/hibiscus/entry"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"Valid", "2024-03-01", true},
		{"TooShort", "2024-3-1", false},
		{"TooLong", "2024-03-01T00", false},
		{"Empty", "", false},
		{"TenCharsButGarbage", "03/01/2024", false},
		{"TenCharsBadMonth", "2024-13-01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := entry.ParseDate(tt.input)
			if tt.valid {
				assert.NoError(t, err)
				assert.Equal(t, tt.input, d.String())
			} else {
				assert.IsError(t, err, entry.ErrBadDate)
			}
		})
	}
}

func TestSortByDate(t *testing.T) {
	mustDate := func(s string) *entry.Date {
		d, err := entry.ParseDate(s)
		assert.NoError(t, err)
		return d
	}

	txn := func(date, narration string) *entry.Transaction {
		return &entry.Transaction{Date: mustDate(date), Flag: entry.FlagOkay, Narration: narration}
	}

	ds := entry.Directives{
		txn("2024-03-02", "b"),
		txn("2024-03-01", "a"),
		txn("2024-03-02", "c"),
		txn("2024-02-28", "d"),
	}

	entry.Sort(ds)

	var order []string
	for _, d := range ds {
		order = append(order, d.(*entry.Transaction).Narration)
	}
	assert.Equal(t, []string{"d", "a", "b", "c"}, order)
}

func TestSortPreservesInputOrderForSameDate(t *testing.T) {
	date, err := entry.ParseDate("2024-03-01")
	assert.NoError(t, err)

	// Same date throughout; the sort must be a no-op.
	var ds entry.Directives
	for _, n := range []string{"one", "two", "three", "four", "five"} {
		ds = append(ds, &entry.Transaction{Date: date, Flag: entry.FlagOkay, Narration: n})
	}

	entry.Sort(ds)

	var order []string
	for _, d := range ds {
		order = append(order, d.(*entry.Transaction).Narration)
	}
	assert.Equal(t, []string{"one", "two", "three", "four", "five"}, order)
}

func TestAmountNeg(t *testing.T) {
	a := &entry.Amount{Value: decimal.RequireFromString("-50.00"), Currency: "EUR"}
	neg := a.Neg()

	assert.True(t, neg.Value.Equal(decimal.RequireFromString("50.00")))
	assert.Equal(t, "EUR", neg.Currency)
	// The original is untouched.
	assert.True(t, a.Value.Equal(decimal.RequireFromString("-50.00")))
}

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"-50", "-50.00"},
		{"150.00", "150.00"},
		{"42.5", "42.50"},
		{"0.005", "0.005"},
		{"1234.56", "1234.56"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d := decimal.RequireFromString(tt.input)
			assert.Equal(t, tt.expected, entry.FormatDecimal(d))
		})
	}
}

func TestAccountValid(t *testing.T) {
	assert.True(t, entry.Account("Assets:Bank:Checking").Valid())
	assert.True(t, entry.Account("Expenses:Food").Valid())
	assert.False(t, entry.Account("Assets").Valid())
	assert.False(t, entry.Account("Banking:Checking").Valid())
	assert.False(t, entry.Account("").Valid())
}

func TestEntryHUID(t *testing.T) {
	date, err := entry.ParseDate("2024-03-01")
	assert.NoError(t, err)

	txn := &entry.Transaction{Date: date, Flag: entry.FlagOkay}
	txn.AddMetadata(&entry.Metadata{Key: entry.MetaHUID, Value: "100"})
	assert.Equal(t, "100", txn.HUID())

	bal := &entry.Balance{Date: date, Account: "Assets:Bank:Checking"}
	assert.Equal(t, "", bal.HUID())
}

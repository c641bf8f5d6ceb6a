package extract

import (
	"strconv"

	"github.com/robinvdvleuten/hibiscus/entry"
	"github.com/robinvdvleuten/hibiscus/source"
)

// build classifies a single row and constructs its entry. It returns nil when
// the row's account id is not mapped.
//
// A row represents a balance assertion iff its integer-truncated amount is
// zero and its running balance is strictly positive. A zero-amount row with a
// zero or negative balance falls through to transaction building.
func (e *Extractor) build(row source.Row) (entry.Directive, error) {
	account, ok := e.opts.Accounts[row.AccountID]
	if !ok {
		return nil, nil
	}

	if row.Amount.Truncate(0).IsZero() && row.Balance.IsPositive() {
		return e.buildBalance(row, account)
	}
	return e.buildTransaction(row, account)
}

// buildBalance constructs a balance assertion from the row's running balance.
func (e *Extractor) buildBalance(row source.Row, account entry.Account) (*entry.Balance, error) {
	date, err := entry.ParseDate(row.Date)
	if err != nil {
		return nil, err
	}

	b := &entry.Balance{
		Date:    date,
		Account: account,
		Amount:  &entry.Amount{Value: row.Balance, Currency: e.currency},
	}
	b.AddMetadata(&entry.Metadata{Key: entry.MetaHUID, Value: strconv.FormatInt(row.ID, 10)})

	return b, nil
}

// buildTransaction constructs a transaction with a single posting, or two
// postings when the counterparty reference resolves to a known internal
// account. The second leg carries the exact arithmetic negation of the first;
// this is a row-local guess and is not validated against the full ledger.
func (e *Extractor) buildTransaction(row source.Row, account entry.Account) (*entry.Transaction, error) {
	date, err := entry.ParseDate(row.Date)
	if err != nil {
		return nil, err
	}

	amount := &entry.Amount{Value: row.Amount, Currency: e.currency}

	t := &entry.Transaction{
		Date:      date,
		Flag:      entry.FlagOkay,
		Narration: row.Purpose,
		Postings:  []*entry.Posting{{Account: account, Amount: amount}},
	}
	t.AddMetadata(&entry.Metadata{Key: entry.MetaHUID, Value: strconv.FormatInt(row.ID, 10)})

	if counter, ok := e.opts.Payees[row.Counterparty]; ok {
		t.Postings = append(t.Postings, &entry.Posting{Account: counter, Amount: amount.Neg()})
	}

	return t, nil
}

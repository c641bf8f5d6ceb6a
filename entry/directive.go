package entry

import "errors"

// ErrBadDate is returned when a source date field is not a 10-character
// ISO 8601 date.
var ErrBadDate = errors.New("malformed date")

// MetaHUID is the metadata key carrying the Hibiscus unique record id.
const MetaHUID = "huid"

// FlagOkay marks a completed/cleared transaction.
const FlagOkay = "*"

// Balance asserts the expected running balance of an account at a point in
// time, distinct from a transaction.
//
// Example:
//
//	2024-03-01 balance Assets:Bank:Checking 150.00 EUR
type Balance struct {
	Date    *Date
	Account Account
	Amount  *Amount

	withMetadata
}

var _ Directive = &Balance{}

func (b *Balance) date() *Date       { return b.Date }
func (b *Balance) Directive() string { return "balance" }

// HUID returns the source record id carried in the entry metadata.
func (b *Balance) HUID() string { return b.Meta(MetaHUID) }

// Transaction records a single booking. Import entries always carry the
// cleared flag, no payee, and the booking purpose as narration. A transaction
// has exactly one posting, or exactly two with equal and opposite amounts
// when the counterparty resolved to a known internal account.
//
// Example:
//
//	2024-03-01 * "Coffee"
//	  huid: "100"
//	  Assets:Bank:Checking  -50.00 EUR
type Transaction struct {
	Date      *Date
	Flag      string
	Payee     string
	Narration string

	withMetadata

	Postings []*Posting
}

var _ Directive = &Transaction{}

func (t *Transaction) date() *Date       { return t.Date }
func (t *Transaction) Directive() string { return "txn" }

// HUID returns the source record id carried in the entry metadata.
func (t *Transaction) HUID() string { return t.Meta(MetaHUID) }

// Posting represents a single leg of a transaction, binding an account to a
// signed amount.
type Posting struct {
	Account Account
	Amount  *Amount
}

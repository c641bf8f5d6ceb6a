// Package printer renders import entries as Beancount text.
//
// The rendering is one-way: it produces output for an external ledger file
// and never needs to round-trip existing source. Postings and balance amounts
// are aligned on a shared currency column, width-aware for non-ASCII account
// names and narrations.
package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/hibiscus/entry"
)

// DefaultCurrencyColumn is the column (1-based) at which currencies start.
const DefaultCurrencyColumn = 61

const indent = "  "

// Printer renders entries to Beancount syntax.
type Printer struct {
	currencyColumn int
}

// Option configures a Printer.
type Option func(*Printer)

// WithCurrencyColumn overrides the column at which currencies are aligned.
func WithCurrencyColumn(col int) Option {
	return func(p *Printer) {
		p.currencyColumn = col
	}
}

// New creates a Printer with the given options.
func New(opts ...Option) *Printer {
	p := &Printer{currencyColumn: DefaultCurrencyColumn}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Print renders all entries to w, separated by blank lines.
func (p *Printer) Print(w io.Writer, ds entry.Directives) error {
	for i, d := range ds {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := p.PrintDirective(w, d); err != nil {
			return err
		}
	}
	return nil
}

// PrintDirective renders a single entry.
func (p *Printer) PrintDirective(w io.Writer, d entry.Directive) error {
	switch e := d.(type) {
	case *entry.Transaction:
		return p.printTransaction(w, e)
	case *entry.Balance:
		return p.printBalance(w, e)
	default:
		return fmt.Errorf("unknown directive type %T", d)
	}
}

func (p *Printer) printTransaction(w io.Writer, t *entry.Transaction) error {
	if t.Payee != "" {
		if _, err := fmt.Fprintf(w, "%s %s %s %s\n", t.Date, t.Flag, quote(t.Payee), quote(t.Narration)); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "%s %s %s\n", t.Date, t.Flag, quote(t.Narration)); err != nil {
			return err
		}
	}

	if err := p.printMetadata(w, t.Metadata); err != nil {
		return err
	}

	for _, posting := range t.Postings {
		line := p.alignAmount(indent+string(posting.Account), posting.Amount)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printBalance(w io.Writer, b *entry.Balance) error {
	head := fmt.Sprintf("%s balance %s", b.Date, b.Account)
	if _, err := fmt.Fprintln(w, p.alignAmount(head, b.Amount)); err != nil {
		return err
	}
	return p.printMetadata(w, b.Metadata)
}

func (p *Printer) printMetadata(w io.Writer, metadata []*entry.Metadata) error {
	for _, m := range metadata {
		if _, err := fmt.Fprintf(w, "%s%s: %s\n", indent, m.Key, quote(m.Value)); err != nil {
			return err
		}
	}
	return nil
}

// alignAmount appends the amount to prefix so that the currency starts at the
// configured column. At least two spaces always separate prefix and amount.
func (p *Printer) alignAmount(prefix string, a *entry.Amount) string {
	num := entry.FormatDecimal(a.Value)

	pad := p.currencyColumn - 2 - runewidth.StringWidth(prefix) - len(num)
	if pad < 2 {
		pad = 2
	}

	return prefix + strings.Repeat(" ", pad) + num + " " + a.Currency
}

// quote renders a Beancount string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

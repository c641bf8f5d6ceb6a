// Package entry declares the ledger entries produced by an import run.
//
// Entries are either balance assertions or transactions, modeled after the
// corresponding Beancount directives. They carry exact decimal amounts and the
// originating Hibiscus record id so that an external ledger writer can
// serialize and audit them. The package does not know how entries are
// rendered; see the printer package for that.
package entry

import (
	"golang.org/x/exp/slices"
)

// Directives is a slice of Directive in output order.
type Directives []Directive

// Directive is the interface implemented by all entry types.
type Directive interface {
	WithMetadata

	date() *Date
	Directive() string
}

// WithMetadata is an interface for entries that can have metadata attached.
type WithMetadata interface {
	AddMetadata(...*Metadata)
}

// withMetadata is an embeddable struct that implements WithMetadata.
type withMetadata struct {
	Metadata []*Metadata
}

func (w *withMetadata) AddMetadata(m ...*Metadata) {
	w.Metadata = append(w.Metadata, m...)
}

// Meta returns the value of the named metadata key, or "" if absent.
func (w *withMetadata) Meta(key string) string {
	for _, m := range w.Metadata {
		if m.Key == key {
			return m.Value
		}
	}
	return ""
}

// compareDirectives compares two directives by date only. Returns -1 if a
// sorts before b, 1 if after, 0 otherwise. Entries sharing a date are
// considered equal so that a stable sort preserves their input order.
func compareDirectives(a, b Directive) int {
	if a.date().Before(b.date().Time) {
		return -1
	} else if a.date().After(b.date().Time) {
		return 1
	}
	return 0
}

// Sort orders directives by date ascending. The sort is stable: entries with
// the same date keep their relative input order, so the output is a total
// order that is reproducible across runs on identical input.
func Sort(ds Directives) {
	slices.SortStableFunc(ds, compareDirectives)
}

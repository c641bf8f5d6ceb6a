// Package extract turns raw Hibiscus rows into ledger entries.
//
// Each row is classified as either a balance assertion or a transaction,
// normalized, resolved against the account and payee mappings, deduplicated
// against the processed-id store and finally sorted into a reproducible
// output order. A single malformed row aborts the whole run; the source data
// is expected to be well-formed and there is no skip-and-continue policy.
package extract

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/robinvdvleuten/hibiscus/entry"
	"github.com/robinvdvleuten/hibiscus/huid"
	"github.com/robinvdvleuten/hibiscus/mapping"
	"github.com/robinvdvleuten/hibiscus/source"
	"github.com/robinvdvleuten/hibiscus/telemetry"
)

// DefaultCurrency is the single fixed currency of an import run.
const DefaultCurrency = "EUR"

// Options configures an Extractor.
type Options struct {
	// Accounts maps Hibiscus account ids onto ledger accounts. Rows whose
	// account id is not mapped are dropped silently; limiting the import to
	// known accounts is expected usage, not an error.
	Accounts mapping.AccountMap

	// Payees maps counterparty references onto ledger accounts for internal
	// transfer resolution. May be empty.
	Payees mapping.PayeeMap

	// Processed is the set of already imported record ids. May be nil when
	// IgnoreProcessed is false.
	Processed *huid.Store

	// IgnoreProcessed skips rows whose id was already imported and collects
	// the newly processed ids for persistence. When false every row is
	// processed unconditionally and nothing is persisted.
	IgnoreProcessed bool

	// Currency overrides DefaultCurrency when non-empty.
	Currency string

	// Hooks run over the final entry list in order. The built-in hooks are
	// identity passes; see hooks.go.
	Hooks []Hook
}

// Result is the outcome of one extraction run.
type Result struct {
	// Entries is the final entry list, sorted by date with input order
	// preserved for same-date entries.
	Entries entry.Directives

	// NewHUIDs contains the id of every row that was processed in this run,
	// balance assertions included. Empty unless IgnoreProcessed is set.
	NewHUIDs []string

	// Skipped counts rows dropped because their id was already processed.
	Skipped int

	// Dropped counts rows dropped because their account id is not mapped.
	Dropped int
}

// Extractor builds ledger entries from rows.
type Extractor struct {
	opts     Options
	currency string
}

// New creates an Extractor. The mappings are owned by the run and must not be
// mutated while the extractor uses them.
func New(opts Options) *Extractor {
	currency := opts.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Extractor{opts: opts, currency: currency}
}

// Extract runs the full pipeline over the given rows.
func (e *Extractor) Extract(ctx context.Context, rows []source.Row) (*Result, error) {
	collector := telemetry.FromContext(ctx)

	timer := collector.Start("classify rows")
	res := &Result{}
	log.Info().Int("rows", len(rows)).Msg("starting to process rows")

	for _, row := range rows {
		id := strconv.FormatInt(row.ID, 10)

		if e.opts.IgnoreProcessed && e.opts.Processed != nil && e.opts.Processed.Contains(id) {
			res.Skipped++
			continue
		}

		d, err := e.build(row)
		if err != nil {
			timer.End()
			return nil, err
		}
		if d == nil {
			// Account outside the import scope.
			res.Dropped++
			continue
		}

		res.Entries = append(res.Entries, d)
		if e.opts.IgnoreProcessed {
			res.NewHUIDs = append(res.NewHUIDs, id)
		}
	}
	timer.End()

	sortTimer := collector.Start("sort entries")
	entry.Sort(res.Entries)
	sortTimer.End()

	hookTimer := collector.Start("apply hooks")
	hooks := e.opts.Hooks
	if hooks == nil {
		hooks = DefaultHooks()
	}
	for _, hook := range hooks {
		res.Entries = hook(res.Entries)
	}
	hookTimer.End()

	log.Info().
		Int("entries", len(res.Entries)).
		Int("skipped", res.Skipped).
		Int("dropped", res.Dropped).
		Msg("finished processing rows")

	return res, nil
}

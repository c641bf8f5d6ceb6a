package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/robinvdvleuten/hibiscus/config"
	"github.com/robinvdvleuten/hibiscus/extract"
	"github.com/robinvdvleuten/hibiscus/huid"
	"github.com/robinvdvleuten/hibiscus/mapping"
	"github.com/robinvdvleuten/hibiscus/printer"
	"github.com/robinvdvleuten/hibiscus/source"
	"github.com/robinvdvleuten/hibiscus/telemetry"
)

type ExtractCmd struct {
	Output  string `help:"Write entries to this file instead of stdout." short:"o" optional:""`
	Dump    bool   `help:"Dump the raw entry structures instead of Beancount text."`
	All     bool   `help:"Process every row, even ids that were already imported (implies no id persistence)."`
	Yes     bool   `help:"Persist newly imported ids without asking." short:"y"`
	MaxRows int    `help:"Override the configured row cap." optional:""`
	MinDate string `help:"Only rows strictly after this ISO date." optional:""`
	MinID   int64  `help:"Only rows with an id strictly greater than this." optional:""`
}

func (cmd *ExtractCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := globals.load()
	if err != nil {
		return err
	}
	if cmd.All {
		cfg.IgnoreProcessed = false
	}
	if cmd.MaxRows > 0 {
		cfg.MaxRows = cmd.MaxRows
	}
	if cmd.MinDate != "" {
		cfg.MinDate = cmd.MinDate
	}
	if cmd.MinID > 0 {
		cfg.MinID = cmd.MinID
	}

	runCtx := context.Background()

	var collector telemetry.Collector
	var rootTimer telemetry.Timer
	var once sync.Once

	reportTelemetry := func() {
		once.Do(func() {
			if collector != nil {
				rootTimer.End()
				_, _ = fmt.Fprintln(ctx.Stderr)
				collector.Report(ctx.Stderr)
			}
		})
	}

	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		rootTimer = collector.Start(fmt.Sprintf("extract %s", cfg.Source))
		defer reportTelemetry()
	}

	accounts, payees, err := mapping.Load(cfg.AccountsCSV)
	if err != nil {
		return err
	}

	var store *huid.Store
	if cfg.IgnoreProcessed {
		store, err = huid.Open(cfg.HUIDFile)
		if err != nil {
			return err
		}
	}

	rows, err := fetchRows(runCtx, cfg, accounts)
	if err != nil {
		return err
	}

	extractor := extract.New(extract.Options{
		Accounts:        accounts,
		Payees:          payees,
		Processed:       store,
		IgnoreProcessed: cfg.IgnoreProcessed,
		Currency:        cfg.Currency,
	})
	res, err := extractor.Extract(runCtx, rows)
	if err != nil {
		return err
	}

	if err := cmd.writeEntries(ctx, res); err != nil {
		return err
	}

	if cfg.IgnoreProcessed && len(res.NewHUIDs) > 0 {
		persist := cmd.Yes
		if !persist {
			persist, err = promptYesNo(fmt.Sprintf("Append %d newly imported ids to %s?", len(res.NewHUIDs), filepath.Base(cfg.HUIDFile)))
			if err != nil {
				return err
			}
		}
		if persist {
			timer := telemetry.FromContext(runCtx).Start("persist ids")
			err := store.Append(res.NewHUIDs)
			timer.End()
			if err != nil {
				return err
			}
			printInfof(ctx.Stderr, "recorded %d newly imported ids", len(res.NewHUIDs))
		} else {
			printInfof(ctx.Stderr, "skipped recording %d newly imported ids", len(res.NewHUIDs))
		}
	}

	reportTelemetry()
	printSuccess(ctx.Stderr, fmt.Sprintf("%d entries extracted (%d already imported, %d out of scope)", len(res.Entries), res.Skipped, res.Dropped))

	return nil
}

// fetchRows opens the configured source and retrieves all filtered rows. The
// source is closed unconditionally, also on error paths.
func fetchRows(ctx context.Context, cfg config.Config, accounts mapping.AccountMap) ([]source.Row, error) {
	src, err := openSource(cfg)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	timer := telemetry.FromContext(ctx).Start("fetch rows")
	defer timer.End()

	return src.Fetch(ctx, source.Filter{
		AccountIDs: accounts.IDs(),
		MaxRows:    cfg.MaxRows,
		MinDate:    cfg.MinDate,
		MinID:      cfg.MinID,
	})
}

// writeEntries renders the result to the selected output.
func (cmd *ExtractCmd) writeEntries(ctx *kong.Context, res *extract.Result) error {
	if cmd.Dump {
		repr.Println(res.Entries)
		return nil
	}

	out := ctx.Stdout
	if cmd.Output != "" && cmd.Output != "-" {
		f, err := os.Create(cmd.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return printer.New().Print(out, res.Entries)
}

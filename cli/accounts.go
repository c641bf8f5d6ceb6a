package cli

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/hibiscus/mapping"
)

type AccountsCmd struct{}

func (cmd *AccountsCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := globals.load()
	if err != nil {
		return err
	}

	accounts, payees, err := mapping.Load(cfg.AccountsCSV)
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return fmt.Errorf("account mapping is invalid")
	}

	for _, id := range accounts.IDs() {
		_, _ = fmt.Fprintf(ctx.Stdout, "%d\t%s\n", id, accounts[id])
	}

	printSuccess(ctx.Stderr, fmt.Sprintf("%d accounts mapped, %d transfer counterparties", len(accounts), len(payees)))

	return nil
}

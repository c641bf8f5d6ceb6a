package cli

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
)

type PingCmd struct{}

func (cmd *PingCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := globals.load()
	if err != nil {
		return err
	}

	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := src.Ping(context.Background()); err != nil {
		printError(ctx.Stderr, err.Error())
		return fmt.Errorf("source %q is not usable", cfg.Source)
	}

	printSuccess(ctx.Stderr, fmt.Sprintf("source %q is reachable", cfg.Source))

	return nil
}

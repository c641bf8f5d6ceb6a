package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robinvdvleuten/hibiscus/config"
	"github.com/robinvdvleuten/hibiscus/source"
)

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Config    string `help:"Importer configuration file." type:"existingfile" short:"c" optional:""`
	Verbose   bool   `help:"Enable debug logging." short:"v"`
	Telemetry bool   `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Extract  ExtractCmd  `cmd:"" help:"Extract ledger entries from the configured Hibiscus source."`
	Accounts AccountsCmd `cmd:"" help:"Show the configured account mapping."`
	Ping     PingCmd     `cmd:"" help:"Verify source connectivity and schema."`
}

// load reads the run configuration and wires up logging. Called at the start
// of every command.
func (g *Globals) load() (config.Config, error) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if g.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if g.Config != "" {
		return config.Load(g.Config)
	}
	return config.FromEnv()
}

// openSource constructs the configured row source.
func openSource(cfg config.Config) (source.Source, error) {
	switch cfg.Source {
	case config.SourceSQLite:
		return source.OpenSQLite(source.SQLiteConfig{
			Path: cfg.Database.Path,
			Key:  cfg.Database.Key,
		})
	case config.SourceRPC:
		return source.OpenRPC(source.RPCConfig{
			URL:      cfg.RPC.URL,
			User:     cfg.RPC.User,
			Password: cfg.RPC.Password,
		})
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}

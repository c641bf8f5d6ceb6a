// Package config holds the explicit run configuration for the importer.
//
// Every recognized option lives on the Config struct that is passed into the
// pipeline at construction; nothing in the pipeline reads process-wide state.
// Configuration is loaded from a YAML file, with credentials overlaid from
// the environment (optionally via a .env file) so that secrets stay out of
// the config file.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Source selectors.
const (
	SourceSQLite = "sqlite"
	SourceRPC    = "xmlrpc"
)

// Database configures the local embedded database.
type Database struct {
	// Path is the database file location.
	Path string `yaml:"path"`

	// Key is the cipher key for a database encrypted at rest.
	Key string `yaml:"key"`
}

// RPC configures the remote Hibiscus XML-RPC service.
type RPC struct {
	URL      string `yaml:"url"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Config enumerates every recognized importer option.
type Config struct {
	// Source selects the retrieval mechanism, SourceSQLite or SourceRPC.
	Source string `yaml:"source"`

	// IgnoreProcessed skips already imported rows and persists newly seen
	// ids at run end.
	IgnoreProcessed bool `yaml:"ignore_processed"`

	// MaxRows caps the number of rows per run when > 0.
	MaxRows int `yaml:"max_rows"`

	// MinDate selects rows strictly after the given ISO date when non-empty.
	MinDate string `yaml:"min_date"`

	// MinID selects rows with an id strictly greater than the given one.
	MinID int64 `yaml:"min_id"`

	// Currency is the single fixed currency of the run.
	Currency string `yaml:"currency"`

	// AccountsCSV is the location of the account mapping table.
	AccountsCSV string `yaml:"accounts_csv"`

	// HUIDFile is the location of the processed-id store.
	HUIDFile string `yaml:"huid_file"`

	Database Database `yaml:"database"`
	RPC      RPC      `yaml:"rpc"`
}

// Default returns the configuration defaults: local database mode, dedup
// enabled, at most 300 rows per run, EUR.
func Default() Config {
	return Config{
		Source:          SourceSQLite,
		IgnoreProcessed: true,
		MaxRows:         300,
		Currency:        "EUR",
		AccountsCSV:     "accounts.csv",
		HUIDFile:        "processed_huids.txt",
	}
}

// Load reads the YAML file at path over the defaults and applies the
// environment overlay. A missing file is a fatal configuration error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// FromEnv returns the defaults with the environment overlay applied, for
// running without a config file.
func FromEnv() (Config, error) {
	cfg := Default()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays credentials and locations from the environment. A .env
// file in the working directory is loaded first when present; real
// environment variables win over .env entries (godotenv never overrides).
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	setenv(&c.Database.Path, "HIBISCUS_DB_PATH")
	setenv(&c.Database.Key, "HIBISCUS_DB_KEY")
	setenv(&c.RPC.URL, "HIBISCUS_RPC_URL")
	setenv(&c.RPC.User, "HIBISCUS_RPC_USER")
	setenv(&c.RPC.Password, "HIBISCUS_RPC_PASSWORD")
	setenv(&c.AccountsCSV, "HIBISCUS_ACCOUNTS_CSV")
	setenv(&c.HUIDFile, "HIBISCUS_HUID_FILE")
}

func setenv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks option combinations that cannot work.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceSQLite, SourceRPC:
	default:
		return fmt.Errorf("unknown source %q (expected %q or %q)", c.Source, SourceSQLite, SourceRPC)
	}
	if c.Source == SourceSQLite && c.Database.Path == "" {
		return fmt.Errorf("source %q requires database.path", c.Source)
	}
	if c.Source == SourceRPC && c.RPC.URL == "" {
		return fmt.Errorf("source %q requires rpc.url", c.Source)
	}
	if c.AccountsCSV == "" {
		return fmt.Errorf("accounts_csv must be set")
	}
	return nil
}

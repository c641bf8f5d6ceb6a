package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/hibiscus/config"
	"github.com/robinvdvleuten/hibiscus/source"
)

func TestOpenSource(t *testing.T) {
	t.Run("SQLite", func(t *testing.T) {
		cfg := config.Default()
		cfg.Database.Path = filepath.Join(t.TempDir(), "hibiscus.db")

		src, err := openSource(cfg)
		assert.NoError(t, err)
		defer src.Close()

		_, ok := src.(*source.SQLiteSource)
		assert.True(t, ok)
	})

	t.Run("RPC", func(t *testing.T) {
		cfg := config.Default()
		cfg.Source = config.SourceRPC
		cfg.RPC.URL = "https://localhost:8080/xmlrpc/"

		src, err := openSource(cfg)
		assert.NoError(t, err)
		defer src.Close()

		_, ok := src.(*source.RPCSource)
		assert.True(t, ok)
	})

	t.Run("Unknown", func(t *testing.T) {
		cfg := config.Default()
		cfg.Source = "h2"

		_, err := openSource(cfg)
		assert.Error(t, err)
	})
}

func TestGlobalsLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hibiscus.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("source: sqlite\ndatabase:\n  path: hibiscus.db\n"), 0o644))

	g := &Globals{Config: path}
	cfg, err := g.load()
	assert.NoError(t, err)
	assert.Equal(t, config.SourceSQLite, cfg.Source)
	assert.Equal(t, "hibiscus.db", cfg.Database.Path)
}

// TestPromptYesNo tests the interactive prompt functionality.
func TestPromptYesNo(t *testing.T) {
	t.Run("NonTTYReturnsFalse", func(t *testing.T) {
		// In a test environment stdin is typically not a terminal; the prompt
		// must return false immediately without blocking. When tests run in an
		// interactive terminal the prompt would block, so only exercise the
		// non-TTY path.
		if isTerminal() {
			t.Skip("stdin is a terminal")
		}

		ok, err := promptYesNo("really?")
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

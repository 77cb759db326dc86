package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdutta/mysqlmeta/internal/errs"
	"github.com/kdutta/mysqlmeta/internal/meta"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "127.0.0.1", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "catalog", cfg.Meta.Term)
	assert.Equal(t, "information_schema", cfg.Meta.Strategy)
	assert.True(t, cfg.Meta.NullDatabaseMeansCurrent)
	assert.True(t, cfg.Meta.TinyInt1IsBit)
	assert.True(t, cfg.Meta.YearIsDateType)
	assert.False(t, cfg.Meta.TransformedBitIsBoolean)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
database:
  host: db.internal
  port: 3307
  database: story
meta:
  term: schema
  strategy: show
  transformed_bit_is_boolean: true
server:
  addr: ":9090"
  read_timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 3307, cfg.Database.Port)
	assert.Equal(t, "story", cfg.Database.Database)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	// Fields the file does not mention keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.True(t, cfg.Meta.TinyInt1IsBit)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: ["), 0o600))
	_, err = Load(path)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestFlags(t *testing.T) {
	cfg := Default()
	cfg.Database.Database = "story"
	f := cfg.Flags()
	assert.Equal(t, meta.TermCatalog, f.Term)
	assert.Equal(t, "story", f.Database)
	assert.True(t, f.NullDatabaseMeansCurrent)
	assert.True(t, f.TinyInt1IsBit)
	assert.True(t, f.YearIsDateType)

	cfg.Meta.Term = "SCHEMA"
	assert.Equal(t, meta.TermSchema, cfg.Flags().Term)
}

func TestStrategy(t *testing.T) {
	cfg := Default()
	assert.Equal(t, meta.StrategyInformationSchema, cfg.Strategy())

	cfg.Meta.Strategy = "show"
	assert.Equal(t, meta.StrategyShowCommands, cfg.Strategy())

	cfg.Meta.Strategy = "SHOW"
	assert.Equal(t, meta.StrategyShowCommands, cfg.Strategy())
}

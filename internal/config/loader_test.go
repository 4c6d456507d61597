package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, SourceFile, cfg.Catalog.Source)
	assert.Equal(t, "configs/catalog.json", cfg.Catalog.Path)
	assert.False(t, cfg.Filter.StrictOperators)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "localhost", cfg.Database.Host)
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := `
server:
  addr: ":9090"
catalog:
  source: spreadsheet
  path: data/products.xlsx
  enumerated: [category, wireless]
filter:
  strict_operators: true
database:
  host: db.internal
  port: 6543
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	t.Setenv("APP_LOG_LEVEL", "debug")
	t.Setenv("APP_DATABASE_USER", "catalog")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, SourceSpreadsheet, cfg.Catalog.Source)
	assert.Equal(t, []string{"category", "wireless"}, cfg.Catalog.Enumerated)
	assert.True(t, cfg.Filter.StrictOperators)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "catalog", cfg.Database.User)
	assert.Equal(t, "admin", cfg.Database.Password)
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	t.Setenv("APP_CATALOG_SOURCE", "ftp")

	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestValidateRequiresPath(t *testing.T) {
	cfg := Config{Server: ServerConfig{Addr: ":1"}, Catalog: CatalogConfig{Source: SourceFile}}
	assert.Error(t, cfg.Validate())

	cfg.Catalog.Source = SourcePostgres
	assert.NoError(t, cfg.Validate())
}

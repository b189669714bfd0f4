package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
sites:
  - name: hejnice
    database: data/hejnice.db
    price_list: data/hejnice.csv
  - name: dobrejov
    database: data/dobrejov.db
    price_list: data/dobrejov.xlsx
server:
  port: 8081
redis:
  address: localhost:6379
  cache_ttl_seconds: 30
requests:
  rate_per_minute: 10
  burst: 5
backup:
  enabled: true
  storage_path: backups
  retention_days: 14
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	require.Len(t, cfg.Sites, 2)
	assert.Equal(t, "hejnice", cfg.Sites[0].Name)
	assert.Equal(t, "data/dobrejov.xlsx", cfg.Sites[1].PriceList)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 8090, cfg.Server.HealthCheckPort, "default health port")
	assert.Equal(t, 30*time.Second, cfg.CacheTTL())
	assert.True(t, cfg.Backup.Enabled)
	assert.Equal(t, 14, cfg.Backup.RetentionDays)

	perMinute, burst := cfg.RequestRate()
	assert.Equal(t, 10, perMinute)
	assert.Equal(t, 5, burst)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_DB_PATH", "/var/lib/penzion")
	cfg, err := Load(writeConfig(t, `
sites:
  - name: hejnice
    database: ${TEST_DB_PATH}/hejnice.db
    price_list: cenik.csv
`))
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/penzion/hejnice.db", cfg.Sites[0].Database)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
sites:
  - name: hejnice
    database: hejnice.db
    price_list: cenik.csv
`))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, time.Duration(0), cfg.CacheTTL())

	perMinute, burst := cfg.RequestRate()
	assert.Equal(t, 5, perMinute)
	assert.Equal(t, 3, burst)
}

func TestLoadValidation(t *testing.T) {
	t.Run("NoSites", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server:\n  port: 8080\n"))
		assert.ErrorContains(t, err, "at least one site")
	})

	t.Run("SiteWithoutName", func(t *testing.T) {
		_, err := Load(writeConfig(t, "sites:\n  - database: a.db\n    price_list: c.csv\n"))
		assert.ErrorContains(t, err, "no name")
	})

	t.Run("SiteWithoutDatabase", func(t *testing.T) {
		_, err := Load(writeConfig(t, "sites:\n  - name: hejnice\n    price_list: c.csv\n"))
		assert.ErrorContains(t, err, "no database path")
	})

	t.Run("SiteWithoutPriceList", func(t *testing.T) {
		_, err := Load(writeConfig(t, "sites:\n  - name: hejnice\n    database: a.db\n"))
		assert.ErrorContains(t, err, "no price list")
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestSiteByName(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	site, ok := cfg.SiteByName("dobrejov")
	require.True(t, ok)
	assert.Equal(t, "data/dobrejov.db", site.Database)

	_, ok = cfg.SiteByName("unknown")
	assert.False(t, ok)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig("")
	assert.Equal(t, "shopstock", cfg.System.Appname)
	assert.Equal(t, 1816, cfg.Web.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, 8, cfg.Web.JwtExpire)
}

func TestLoadConfigFromFile(t *testing.T) {
	content := []byte(`
system:
  appname: teststock
  workdir: /tmp/teststock
web:
  host: 127.0.0.1
  port: 9999
  secret: filesecret
database:
  type: postgres
  host: dbhost
  port: 5433
  name: testdb
`)
	cfile := filepath.Join(t.TempDir(), "shopstock.yml")
	require.NoError(t, os.WriteFile(cfile, content, 0o644))

	cfg := LoadConfig(cfile)
	assert.Equal(t, "teststock", cfg.System.Appname)
	assert.Equal(t, 9999, cfg.Web.Port)
	assert.Equal(t, "dbhost", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SHOPSTOCK_DB_HOST", "env-db-host")
	t.Setenv("SHOPSTOCK_WEB_SECRET", "env-secret")

	cfg := LoadConfig("")
	assert.Equal(t, "env-db-host", cfg.Database.Host)
	assert.Equal(t, "env-secret", cfg.Web.Secret)

	// overrides must not leak into the shared defaults
	assert.Equal(t, "127.0.0.1", DefaultAppConfig.Database.Host)
	assert.NotEqual(t, "env-secret", DefaultAppConfig.Web.Secret)
}

func TestLoadConfigDoesNotShareDefaults(t *testing.T) {
	first := LoadConfig("")
	first.Database.Host = "mutated"

	second := LoadConfig("")
	assert.Equal(t, "127.0.0.1", second.Database.Host)
	assert.Equal(t, "127.0.0.1", DefaultAppConfig.Database.Host)
}

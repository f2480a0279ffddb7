package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresTokenSecret(t *testing.T) {
	t.Setenv("RSVP_TOKEN_SECRET", "")
	t.Setenv("PLANORA_CONFIG", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RSVP_TOKEN_SECRET", "s3cret")
	t.Setenv("PLANORA_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "planora", cfg.Database.Database)
	assert.Equal(t, 90, cfg.RSVP.TokenTTLDays)
	assert.Equal(t, 5.0, cfg.RateLimit.PerSecond)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadYAMLThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planora.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9000"
database:
  database: weddings
rsvp:
  token_secret: from-file
  token_ttl_days: 30
`), 0o600))

	t.Setenv("PLANORA_CONFIG", path)
	t.Setenv("RSVP_TOKEN_SECRET", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("HTTP_ADDR", ":7777") // env wins over file

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.HTTP.Addr)
	assert.Equal(t, "weddings", cfg.Database.Database)
	assert.Equal(t, "from-file", cfg.RSVP.TokenSecret)
	assert.Equal(t, 30, cfg.RSVP.TokenTTLDays)
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "planora", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=planora sslmode=disable", c.DSN())
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestParse(t *testing.T) {
	t.Run("MemoryDefaults", func(t *testing.T) {
		cfg, err := Parse([]byte(`
server:
  port: 8080
jwt:
  secret: "` + secret + `"
`))
		require.NoError(t, err)
		assert.Equal(t, StorageMemory, cfg.Storage.Type)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "text", cfg.Log.Format)
		assert.Equal(t, 60, cfg.JWT.AccessTokenExpiry)
		assert.Equal(t, "0 */15 * * * *", cfg.Scheduler.SweepExpired)
		assert.Equal(t, ":8080", cfg.GetServerAddress())
	})

	t.Run("Postgres", func(t *testing.T) {
		cfg, err := Parse([]byte(`
server:
  host: 127.0.0.1
  port: 9000
storage:
  type: postgres
database:
  host: db
  user: circ
  password: pw
  database: library
jwt:
  secret: "` + secret + `"
`))
		require.NoError(t, err)
		assert.Equal(t, "postgres://circ:pw@db:5432/library?sslmode=disable", cfg.GetDatabaseConnectionString())
	})

	t.Run("PostgresNeedsHost", func(t *testing.T) {
		_, err := Parse([]byte(`
server: {port: 8080}
storage: {type: postgres}
jwt: {secret: "` + secret + `"}
`))
		assert.ErrorContains(t, err, "database host is required")
	})

	t.Run("ShortSecret", func(t *testing.T) {
		_, err := Parse([]byte("server: {port: 8080}\njwt: {secret: short}\n"))
		assert.ErrorContains(t, err, "at least 32 characters")
	})

	t.Run("UnknownStorage", func(t *testing.T) {
		_, err := Parse([]byte("server: {port: 8080}\nstorage: {type: redis}\njwt: {secret: \"" + secret + "\"}\n"))
		assert.ErrorContains(t, err, "unknown storage type")
	})

	t.Run("EnvOverride", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "7070")
		t.Setenv("LOG_LEVEL", "debug")
		cfg, err := Parse([]byte("server: {port: 8080}\njwt: {secret: \"" + secret + "\"}\n"))
		require.NoError(t, err)
		assert.Equal(t, 7070, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Log.Level)
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: {port: 8080}\njwt: {secret: \""+secret+"\"}\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRouteSecurityConfig(t *testing.T) {
	assert.Equal(t, SecurityPublic, RouteSecurityConfig["Health"].Level)
	for name, rule := range RouteSecurityConfig {
		if name != "Health" {
			assert.Equal(t, SecurityAccess, rule.Level, name)
		}
	}
}

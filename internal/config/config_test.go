package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: data/test.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "shareit", cfg.App.Name)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 300, cfg.Cache.SearchTTLSeconds)
	assert.Equal(t, float64(20), cfg.API.RateLimit.RPS)
	assert.Equal(t, 40, cfg.API.RateLimit.Burst)
	assert.Equal(t, "exports", cfg.Exports.Path)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_DB_PATH", "data/env.db")
	path := writeConfig(t, `
database:
  path: ${TEST_DB_PATH}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "data/env.db", cfg.Database.Path)
}

func TestLoadValidation(t *testing.T) {
	path := writeConfig(t, `
app:
  name: shareit
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "database path is required")

	path = writeConfig(t, `
database:
  path: data/test.db
redis:
  enabled: true
`)
	_, err = Load(path)
	assert.ErrorContains(t, err, "redis address is required")

	path = writeConfig(t, `
database:
  path: data/test.db
backup:
  enabled: true
`)
	_, err = Load(path)
	assert.ErrorContains(t, err, "backup storage path is required")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

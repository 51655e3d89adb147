package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T) Config {
	t.Helper()
	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("STRICT_ORDER_TRANSITIONS", "")

	cfg := load(t)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "stockroom.db", cfg.Database.File)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "admin", cfg.AdminRecipient)
	assert.False(t, cfg.StrictOrderTransitions)
	assert.False(t, cfg.Archive.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("JWT_EXPIRES_IN", "90m")
	t.Setenv("STRICT_ORDER_TRANSITIONS", "true")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ARCHIVE_ENDPOINT", "minio:9000")
	t.Setenv("ARCHIVE_BUCKET", "snapshots")

	cfg := load(t)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 90*time.Minute, cfg.Auth.SessionTTL)
	assert.True(t, cfg.StrictOrderTransitions)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.Archive.Enabled())
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "soon")
	t.Setenv("SEED_DEMO", "maybe")

	cfg := load(t)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.True(t, cfg.SeedDemo)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stockroom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_port: 7070\nredis_db: 2\nseed_demo: false\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_PORT", "")
	t.Setenv("REDIS_DB", "5")

	cfg := load(t)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, 5, cfg.Redis.DB, "env wins over the file")
	assert.False(t, cfg.SeedDemo)
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

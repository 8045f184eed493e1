package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644))
	return dir
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	uploads := filepath.Join(t.TempDir(), "uploads")
	dir := writeConfig(t, `
server:
  mode: debug
database:
  driver: sqlite
  path: test.db
jwt:
  expire_hours: 2
storage:
  type: local
  local_path: `+uploads+`
cors:
  allowed_origins:
    - http://localhost:5173
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, "edunest_session", cfg.Session.CookieName)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, int64(500<<20), cfg.Upload.MaxUploadBytes("video"))
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxUploadBytes("image"))
	assert.Equal(t, int64(50<<20), cfg.Upload.MaxUploadBytes("document"))
	assert.NotEmpty(t, cfg.JWT.Secret, "debug mode falls back to a dev secret")
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.ConfigPath)

	_, err = os.Stat(uploads)
	assert.NoError(t, err, "local storage directory is created")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: sqlite
storage:
  type: minio
`)
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.JWT.Secret)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadConfig_ReleaseRequiresStrongSecret(t *testing.T) {
	dir := writeConfig(t, `
storage:
  type: minio
`)
	t.Setenv("SERVER_MODE", "release")

	_, err := LoadConfig(dir)
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "short")
	_, err = LoadConfig(dir)
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "release", cfg.Server.Mode)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "minio")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "@every 6h", cfg.Jobs.ReconcileSchedule)
	assert.Empty(t, cfg.ConfigPath)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverGorm, cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout)
	assert.Equal(t, time.Minute, cfg.RefCacheTTL)
	assert.Equal(t, 0, cfg.MaxLimit)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.True(t, cfg.IsDev())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "Bun")
	t.Setenv("QUERY_TIMEOUT", "750ms")
	t.Setenv("MAX_LIMIT", "100")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DriverBun, cfg.StoreDriver)
	assert.Equal(t, 750*time.Millisecond, cfg.QueryTimeout)
	assert.Equal(t, 100, cfg.MaxLimit)
	assert.False(t, cfg.IsDev())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TIMEZONE=Asia/Ho_Chi_Minh\nREDIS_ADDR=localhost:6379\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("TIMEZONE")
		os.Unsetenv("REDIS_ADDR")
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Ho_Chi_Minh", loc.String())
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Run("driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		_, err := Load(noEnvFile(t))
		assert.ErrorContains(t, err, "STORE_DRIVER")
	})

	t.Run("timezone", func(t *testing.T) {
		t.Setenv("TIMEZONE", "Mars/Olympus")
		_, err := Load(noEnvFile(t))
		assert.ErrorContains(t, err, "timezone")
	})
}

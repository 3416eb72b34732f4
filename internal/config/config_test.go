package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultsAndWarnings(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"APP_ENV", "PORT", "LOG_LEVEL", "DB_PATH", "STORAGE_DRIVER", "REDIS_URL", "DATABASE_URL", "ADMIN_EMAIL", "ADMIN_PASSWORD", "SESSION_SECRET"} {
		unset(t, key)
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./dev.db", cfg.DBPath)
	assert.Equal(t, "sqlite", cfg.StorageDriver)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.IsDev())
	assert.ElementsMatch(t, []string{
		"ADMIN_EMAIL is not set",
		"ADMIN_PASSWORD is not set",
		"SESSION_SECRET is not set, sessions will not survive a restart",
	}, cfg.Warnings)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_DRIVER", "Redis")
	t.Setenv("REDIS_URL", "")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("SESSION_SECRET", "s3cr3t")

	cfg := Load()

	assert.False(t, cfg.IsDev())
	assert.Equal(t, "redis", cfg.StorageDriver)
	assert.Equal(t, []string{"STORAGE_DRIVER=redis but REDIS_URL is not set"}, cfg.Warnings)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RequiresSessionSecretOutsideDevelopment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", "production")
	unset(t, "SESSION_SECRET")

	cfg := Load()

	assert.ErrorIs(t, cfg.Validate(), ErrMissingSessionSecret)
	assert.NotContains(t, cfg.Warnings, "SESSION_SECRET is not set, sessions will not survive a restart")
}

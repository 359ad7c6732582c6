package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 100.0, cfg.Limits.DefaultDaily)
	assert.Equal(t, 500.0, cfg.Limits.DefaultWeekly)
	assert.Equal(t, 2000.0, cfg.Limits.DefaultMonthly)
	assert.Equal(t, "UTC", cfg.Limits.Timezone)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
	assert.True(t, cfg.Migrations.Auto)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LIMITS_DEFAULT_DAILY", "250.5")
	t.Setenv("LIMITS_TIMEZONE", "UTC")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("MIGRATIONS_AUTO", "false")
	t.Setenv("JWT_ACCESS_EXPIRY", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 250.5, cfg.Limits.DefaultDaily)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Migrations.Auto)
	assert.Equal(t, time.Hour, cfg.JWT.AccessExpiry)
}

func TestLoad_InvalidExpiry(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_ACCESS_EXPIRY", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt access expiry")
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "session-bridge", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 3600, cfg.Bridge.AccessTokenTTLSeconds)
	assert.Equal(t, 604800, cfg.Bridge.RefreshTokenTTLSeconds)
	assert.Equal(t, 3, cfg.Bridge.EstablishAttempts)
	assert.Equal(t, 2, cfg.Bridge.VerifyAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Bridge.RetryBaseDelay())
	assert.Equal(t, "authjs.session-token", cfg.Bridge.PrimaryCookieName)
	assert.Equal(t, "sb-session-id", cfg.Bridge.SessionCookieName)
	assert.Equal(t, time.Hour, cfg.Bridge.AccessTokenTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.Bridge.RefreshTokenTTL())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("BRIDGE_JWT_SECRET", "sekrit")
	t.Setenv("BRIDGE_ESTABLISH_ATTEMPTS", "5")
	t.Setenv("BRIDGE_RETRY_BASE_DELAY_MS", "25")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "sekrit", cfg.Bridge.JWTSecret)
	assert.Equal(t, 5, cfg.Bridge.EstablishAttempts)
	assert.Equal(t, 25*time.Millisecond, cfg.Bridge.RetryBaseDelay())
	assert.False(t, cfg.Postgres.RunMigrations)
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadIgnoresMalformedInts(t *testing.T) {
	t.Setenv("BRIDGE_ACCESS_TOKEN_TTL_SECONDS", "garbage")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3600, cfg.Bridge.AccessTokenTTLSeconds)
}

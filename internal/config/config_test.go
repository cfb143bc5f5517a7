package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WEAV04/willy/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "willy.db", cfg.DatabasePath)
	assert.Equal(t, 10*time.Minute, cfg.AlertDeadline)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, "willy", cfg.ServiceName)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WILLY_PORT", "9999")
	t.Setenv("WILLY_ALERT_DEADLINE", "90s")
	t.Setenv("WILLY_RATE_LIMIT_PER_SECOND", "2.5")
	t.Setenv("WILLY_DB_PATH", ":memory:")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.AlertDeadline)
	assert.Equal(t, 2.5, cfg.RateLimitPerSecond)
	assert.Equal(t, ":memory:", cfg.DatabasePath)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("WILLY_ALERT_DEADLINE", "not-a-duration")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.AlertDeadline)
}

func TestParseServiceKeys(t *testing.T) {
	cfg := config.Config{ServiceKeys: "chat:aGFzaDE=$aGFzaDE=, console:aGFzaDI=$aGFzaDI="}
	keys, err := cfg.ParseServiceKeys()
	require.NoError(t, err)
	assert.Len(t, keys, 2)
	assert.Equal(t, "aGFzaDE=$aGFzaDE=", keys["chat"])

	cfg = config.Config{ServiceKeys: "missing-separator"}
	_, err = cfg.ParseServiceKeys()
	assert.Error(t, err)

	cfg = config.Config{}
	keys, err = cfg.ParseServiceKeys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestValidate_RejectsNonPositiveDeadline(t *testing.T) {
	t.Setenv("WILLY_ALERT_DEADLINE", "-5m")

	_, err := config.Load()
	assert.Error(t, err)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_MODE", "")
	t.Setenv("AGING_INTERVAL", "")
	t.Setenv("FOLLOWUP_MAX_DAYS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ModeLive, cfg.Mode)
	assert.Equal(t, time.Minute, cfg.Aging.RefreshInterval)
	assert.Equal(t, 60, cfg.Aging.FollowupMaxDays)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_MODE", "Demo")
	t.Setenv("AGING_INTERVAL", "30")
	t.Setenv("CORS_ORIGINS", "https://app.imobcrm.com.br, http://localhost:3000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Mode.IsDemo())
	assert.Equal(t, 30*time.Second, cfg.Aging.RefreshInterval)
	assert.Equal(t, []string{"https://app.imobcrm.com.br", "http://localhost:3000"}, cfg.HTTP.AllowedOrigins)
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	t.Setenv("APP_MODE", "staging")

	_, err := Load()
	assert.Error(t, err)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, AgingConfig{DisplayTimezone: "Nowhere/Invalid"}.Location())
}

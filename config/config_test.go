package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "")
	t.Setenv("DB_AUTO_MIGRATE", "")
	t.Setenv("STATS_REFRESH_INTERVAL", "")
	t.Setenv("TRACKING_BASE_URL", "")
	t.Setenv("ORPHAN_RETENTION", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, 5*time.Minute, cfg.StatsRefreshInterval)
	assert.Equal(t, "http://localhost:3000", cfg.TrackingBaseURL)
	assert.Equal(t, 720*time.Hour, cfg.OrphanRetention)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "8080")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("POSTBACK_RECORD_ORPHANS", "1")
	t.Setenv("STATS_REFRESH_INTERVAL", "30s")
	t.Setenv("TRACKING_BASE_URL", "https://track.example.com/")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ORPHAN_RETENTION", "48h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.True(t, cfg.RecordOrphans)
	assert.Equal(t, 30*time.Second, cfg.StatsRefreshInterval)
	assert.Equal(t, "https://track.example.com", cfg.TrackingBaseURL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 48*time.Hour, cfg.OrphanRetention)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

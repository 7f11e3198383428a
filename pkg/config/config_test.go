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
	assert.Equal(t, ":8080", cfg.ListenAddress)
	assert.Equal(t, ":8081", cfg.DebugAddress)
	assert.Equal(t, 5*time.Minute, cfg.PopularCacheTTL)
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.False(t, cfg.HasRedis())
	assert.False(t, cfg.HasRabbit())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STOREFRONT_LISTEN_ADDRESS", ":9000")
	t.Setenv("STOREFRONT_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("STOREFRONT_SESSION_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddress)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.HasRedis())
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("STOREFRONT_BACKEND_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)
}

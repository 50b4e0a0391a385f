package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DASHBOARD_URL", "")
	t.Setenv("WORKER_POLL_SECONDS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.ServerURL)
	assert.Equal(t, time.Second, cfg.Sync.TickInterval)
	assert.Equal(t, 5*time.Second, cfg.Sync.WorkerPollInterval)
	assert.Equal(t, 5*time.Second, cfg.Sync.ReconnectDelay)
	assert.Zero(t, cfg.Sync.HeartbeatTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DASHBOARD_URL", "http://dashboard.internal:9000/")
	t.Setenv("RECONNECT_DELAY_SECONDS", "2")
	t.Setenv("HEARTBEAT_TIMEOUT_SECONDS", "45")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://dashboard.internal:9000", cfg.ServerURL)
	assert.Equal(t, cfg.ServerURL, cfg.Client.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Sync.ReconnectDelay)
	assert.Equal(t, 45*time.Second, cfg.Sync.HeartbeatTimeout)
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("WORKER_POLL_SECONDS", "five")

	_, err := Load()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "WORKER_POLL_SECONDS", cfgErr.Field)
}

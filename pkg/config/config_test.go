package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "KES", cfg.Currency)
	assert.Equal(t, "localhost:3000", cfg.Server.Addr())
	assert.Equal(t, 256, cfg.Bus.QueueSize)
	assert.Equal(t, 2, cfg.Bus.Workers)
	assert.Equal(t, 5*time.Second, cfg.Bus.ShutdownTimeout)
	assert.Equal(t, 3, cfg.Security.LoginFailureThreshold)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("BUS_WORKERS", "4")
	t.Setenv("SECURITY_LOGIN_FAILURE_THRESHOLD", "5")

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 4, cfg.Bus.Workers)
	assert.Equal(t, 5, cfg.Security.LoginFailureThreshold)
}

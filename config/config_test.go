package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.False(t, cfg.IsDev)
	assert.Equal(t, AuthModeOAuth, cfg.Auth.Mode)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.True(t, cfg.Postgres.RunMigrationsOnStart)
	assert.Equal(t, "localhost:6379", cfg.Redis.URI)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.NotEmpty(t, cfg.Session.TerminalID, "terminal ID falls back to hostname")
	assert.Equal(t, 5*time.Second, cfg.Session.ReadinessTimeout)
	assert.Equal(t, 15*time.Second, cfg.Session.VerifyTimeout)
	assert.Equal(t, 10*time.Second, cfg.Session.LookupTimeout)
	assert.False(t, cfg.Observability.Metrics.IsEnabled())
}

func TestAppConfig_EnvOverrides(t *testing.T) {
	t.Setenv("AUTH_MODE", "local")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("TERMINAL_ID", "register-3")
	t.Setenv("SESSION_VERIFY_TIMEOUT", "2s")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, AuthModeLocal, cfg.Auth.Mode)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, "register-3", cfg.Session.TerminalID)
	assert.Equal(t, 2*time.Second, cfg.Session.VerifyTimeout)
}

func TestAuthMode_RejectsUnknown(t *testing.T) {
	var m AuthMode
	err := m.UnmarshalText([]byte("saml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid AuthMode")
}

func TestSessionConfig_SanitizeClampsTimeouts(t *testing.T) {
	c := SessionConfig{ReadinessTimeout: -1, VerifyTimeout: 0, LookupTimeout: -5}
	c.Sanitize()

	assert.Equal(t, 5*time.Second, c.ReadinessTimeout)
	assert.Equal(t, 15*time.Second, c.VerifyTimeout)
	assert.Equal(t, 10*time.Second, c.LookupTimeout)
}

func TestObservabilityMetrics_DisabledWithoutAddress(t *testing.T) {
	c := ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "   "}
	c.Sanitize()
	assert.False(t, c.IsEnabled())
}

func TestAppConfig_DevModeFromAppEnv(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.True(t, cfg.IsDev)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "rh-console", cfg.App.Name)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "adp_rh_auth_token", cfg.Session.TokenCookie)
	assert.Equal(t, "adp_rh_auth_client", cfg.Session.ClientCookie)
	assert.Equal(t, 168*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.True(t, cfg.Audit.Enabled)
	assert.False(t, cfg.Events.Enabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("SESSION_HARDENED", "true")
	t.Setenv("UPSTREAM_BASE_URL", "https://backend.example.com/api")
	t.Setenv("EVENTS_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "https://backend.example.com/api", cfg.Upstream.BaseURL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Events.Brokers)
	assert.Equal(t, 24*time.Hour, cfg.Session.EffectiveTTL())
}

func TestEffectiveTTL(t *testing.T) {
	s := SessionConfig{TTL: 168 * time.Hour, HardenedTTL: 24 * time.Hour}
	assert.Equal(t, 168*time.Hour, s.EffectiveTTL())

	s.Hardened = true
	assert.Equal(t, 24*time.Hour, s.EffectiveTTL())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App:      AppConfig{Name: "rh-console"},
			Server:   ServerConfig{Port: 3000},
			Upstream: UpstreamConfig{BaseURL: "http://localhost:8080"},
			Session:  SessionConfig{TTL: 168 * time.Hour, HardenedTTL: 24 * time.Hour},
		}
	}

	require.NoError(t, base().Validate())

	cfg := base()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Upstream.BaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Session.HardenedTTL = cfg.Session.TTL * 2
	assert.Error(t, cfg.Validate())
}

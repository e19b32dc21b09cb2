package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "http://localhost:8000/api", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, SessionBackendCookie, cfg.Session.Backend)
	assert.Equal(t, OverrideStoreMemory, cfg.Overrides.Store)
	assert.Zero(t, cfg.Overrides.MaxAge)
	assert.Equal(t, 20, cfg.RateLimit.LoginPerMinute)
}

func TestOverridesFromEnvironment(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "https://uni.example.com/api/")
	t.Setenv("OVERRIDE_STORE", "Redis")
	t.Setenv("OVERRIDE_MAX_AGE", "720h")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, "https://uni.example.com/api", cfg.Backend.BaseURL)
	assert.Equal(t, OverrideStoreRedis, cfg.Overrides.Store)
	assert.Equal(t, 720*time.Hour, cfg.Overrides.MaxAge)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("garbage", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}

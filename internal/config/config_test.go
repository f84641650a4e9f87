package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "local", cfg.StorageDriver)
	assert.Contains(t, cfg.AllowedOrigins(), "http://localhost:3000")
	assert.False(t, cfg.IsProdLike())
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.app, https://b.app")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
	assert.Equal(t, []string{"https://a.app", "https://b.app"}, cfg.AllowedOrigins())
}

func TestLoad_ProdRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateConfig_CloudinaryNeedsCredentials(t *testing.T) {
	cfg := &Config{
		AppEnv:             "dev",
		Timezone:           "UTC",
		DatabaseURL:        "test.db",
		JWTTTL:             time.Hour,
		ResetTokenTTL:      time.Minute,
		RateLimitPerMinute: 10,
		StorageDriver:      "cloudinary",
	}
	assert.Error(t, validateConfig(cfg))

	cfg.CloudinaryCloudName = "demo"
	cfg.CloudinaryAPIKey = "key"
	cfg.CloudinaryAPISecret = "secret"
	assert.NoError(t, validateConfig(cfg))
}

func TestLoad_RejectsUnknownTimezone(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}

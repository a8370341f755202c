package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("S3_BUCKET_NAME", "deskhub-test")
	t.Setenv("S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("S3_ACCESS_KEY_ID", "test-key")
	t.Setenv("S3_SECRET_ACCESS_KEY", "test-secret")
}

func TestLoadConfigDevelopmentDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PORT", "")
	t.Setenv("POW_DIFFICULTY", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 4, cfg.PowDifficulty)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.NotEmpty(t, cfg.DatabaseDSN)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoadConfigParsesAllowedOrigins(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "https://desk.example.com, https://widget.example.com ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://desk.example.com", "https://widget.example.com"}, cfg.AllowedOrigins)
}

func TestLoadConfigRejectsInvalidPort(t *testing.T) {
	setRequiredEnv(t)

	t.Setenv("PORT", "not-a-number")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("PORT", "80")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRequiresSecretsOutsideDevelopment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "postgres://deskhub@db:5432/deskhub")

	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "a-real-secret")
	t.Setenv("DATABASE_URL", "")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRequiresS3Settings(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("S3_BUCKET_NAME", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

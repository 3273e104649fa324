package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	require.NotNil(t, cfg)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 2, cfg.Registration.MinParticipants)
	assert.Equal(t, 8, cfg.Registration.MaxParticipants)
	assert.Equal(t, 100, cfg.Registration.SequenceScanLimit)
	assert.Equal(t, 3, cfg.OTP.MaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.OTP.TTL)
	assert.False(t, cfg.OTP.ExposeCode)
	assert.Equal(t, 10*time.Second, cfg.Webhook.Timeout)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	v.Set("OTP_TTL", "bogus")
	v.Set("OTP_MAX_ATTEMPTS", 0)
	v.Set("SMTP_SECURE", true)

	cfg := fromViper(v)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 10*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 3, cfg.OTP.MaxAttempts)
	assert.True(t, cfg.SMTP.Secure)
}

func TestDatabaseURLEscapesCredentials(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", Name: "events", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/events?sslmode=disable", cfg.URL())
}

func TestValidateRejectsDevelopmentSecretsInProduction(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ENV", EnvProduction)
	v.Set("JWT_SECRET", "jwt-prod-key")

	cfg := fromViper(v)
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOCUMENTS_SIGNED_URL_SECRET, OTP_SECRET")
	assert.NotContains(t, err.Error(), "JWT_SECRET")

	v.Set("OTP_SECRET", "otp-prod-key")
	v.Set("DOCUMENTS_SIGNED_URL_SECRET", "docs-prod-key")
	assert.NoError(t, fromViper(v).Validate())
}

func TestValidateAllowsDefaultsOutsideProduction(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	assert.NoError(t, fromViper(v).Validate())
}

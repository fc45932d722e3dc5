package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productionConfig() *Config {
	return &Config{
		Env:              "production",
		Port:             "8080",
		JWTSecret:        "secure-secret-at-least-32-chars-long",
		DBPassword:       "secure-password",
		DBSSLMode:        "require",
		FalAPIKey:        "key",
		FalWebhookSecret: "hook-secret",
	}
}

func TestConfig_ValidateProduction(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid production config", func(*Config) {}, false},
		{"default jwt secret", func(c *Config) { c.JWTSecret = defaultJWTSecret }, true},
		{"short jwt secret", func(c *Config) { c.JWTSecret = "short" }, true},
		{"weak db password", func(c *Config) { c.DBPassword = "password" }, true},
		{"ssl disabled", func(c *Config) { c.DBSSLMode = "disable" }, true},
		{"missing provider key", func(c *Config) { c.FalAPIKey = "" }, true},
		{"missing webhook secret", func(c *Config) { c.FalWebhookSecret = "" }, true},
		{"development tolerates defaults", func(c *Config) {
			c.Env = "development"
			c.JWTSecret = defaultJWTSecret
			c.DBSSLMode = "disable"
			c.FalAPIKey = ""
			c.FalWebhookSecret = ""
		}, false},
		{"negative attempts", func(c *Config) { c.FalMaxAttempts = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := productionConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_WebhookURL(t *testing.T) {
	c := &Config{PublicBaseURL: "https://reve.example"}
	assert.Equal(t, "https://reve.example/api/fal/webhook", c.WebhookURL())

	c.FalWebhookSecret = "s3cret"
	assert.Equal(t, "https://reve.example/api/fal/webhook?token=s3cret", c.WebhookURL())
}

func TestConfig_DurationsFallBackToDefaults(t *testing.T) {
	c := &Config{}
	assert.Equal(t, 15*time.Minute, c.GenerationStaleAfter())
	assert.Equal(t, 2*time.Second, c.PollInterval())

	c.GenerationStaleAfterMinutes = 5
	c.PollIntervalMS = 750
	assert.Equal(t, 5*time.Minute, c.GenerationStaleAfter())
	assert.Equal(t, 750*time.Millisecond, c.PollInterval())
}

func TestLoadConfig_Normalization(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer os.Unsetenv("PUBLIC_BASE_URL")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")
	os.Setenv("PUBLIC_BASE_URL", "http://localhost:9000/")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "http://localhost:9000", c.PublicBaseURL)
	assert.Equal(t, "fal-ai/reve/edit", c.FalModel)
	assert.Equal(t, 3, c.FalMaxAttempts)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_parseEnv(t *testing.T) {
	t.Run("overrides from environment", func(t *testing.T) {
		t.Setenv("ADDRESS", "env:9000")
		t.Setenv("DATABASE_DSN", "postgres://env/tokens")
		t.Setenv("SIGNING_KEY", "env_secret_key")
		t.Setenv("JWT_ISSUER", "env-issuer")
		t.Setenv("JWT_AUDIENCE", "env-audience")
		t.Setenv("ACCESS_TOKEN_VALIDITY_MINUTES", "5")
		t.Setenv("REFRESH_TOKEN_VALIDITY_DAYS", "7")

		cfg := &Config{}
		cfg.LoadDefaults()
		parseEnv(cfg)

		assert.Equal(t, "env:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://env/tokens", cfg.DatabaseDSN)
		assert.Equal(t, "env_secret_key", cfg.SigningKey)
		assert.Equal(t, "env-issuer", cfg.Issuer)
		assert.Equal(t, "env-audience", cfg.Audience)
		assert.Equal(t, 5*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenValidityDuration)
	})

	t.Run("unset variables keep current values", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		parseEnv(cfg)

		assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
		assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 30*24*time.Hour, cfg.RefreshTokenValidityDuration)
	})
}

package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig mirrors the Config fields that can come from the environment.
// Lifetimes use coarse units (minutes for access, days for refresh) to match
// the command-line flags.
type envConfig struct {
	EndpointAddrHTTP           string `env:"ADDRESS"`
	DatabaseDSN                string `env:"DATABASE_DSN"`
	SigningKey                 string `env:"SIGNING_KEY"`
	Issuer                     string `env:"JWT_ISSUER"`
	Audience                   string `env:"JWT_AUDIENCE"`
	AccessTokenValidityMinutes int    `env:"ACCESS_TOKEN_VALIDITY_MINUTES"`
	RefreshTokenValidityDays   int    `env:"REFRESH_TOKEN_VALIDITY_DAYS"`
}

// parseEnv overlays environment variables onto the Config. Unset variables
// keep the current values.
func parseEnv(config *Config) {
	c := envConfig{}
	if err := env.Parse(&c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SigningKey != "" {
		config.SigningKey = c.SigningKey
	}
	if c.Issuer != "" {
		config.Issuer = c.Issuer
	}
	if c.Audience != "" {
		config.Audience = c.Audience
	}
	if c.AccessTokenValidityMinutes > 0 {
		config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityMinutes) * time.Minute
	}
	if c.RefreshTokenValidityDays > 0 {
		config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDays) * 24 * time.Hour
	}
}

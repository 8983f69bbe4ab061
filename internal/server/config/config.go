// Package config handles configuration for the development API server,
// including defaults, JSON overlay, environment variables and command-line
// flags.
package config

import "time"

// Config holds runtime settings for the API server.
//
// Fields:
//   - HTTPAddr: bind address for the REST API.
//   - APIPrefix: path prefix of every REST route, "/api" by default.
//   - GRPCAddr: bind address for the gRPC health endpoint.
//   - MetricsAddr: bind address for /metrics; empty disables it.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps users in memory.
//   - RedisAddr: when set, refresh tokens live in Redis.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - RotateRefreshTokens: issue a new refresh token on every refresh.
type Config struct {
	HTTPAddr                     string
	APIPrefix                    string
	GRPCAddr                     string
	MetricsAddr                  string
	DatabaseDSN                  string
	RedisAddr                    string
	RedisPassword                string
	RedisDB                      int
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	RotateRefreshTokens          bool
	LogLevel                     string
	LogFormat                    string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":5000"
	c.APIPrefix = "/api"
	c.GRPCAddr = ":50051"
	c.MetricsAddr = ":9090"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	c.RotateRefreshTokens = true
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line
// flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

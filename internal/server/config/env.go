package config

import "github.com/cryptobulldev/userdash/internal/envx"

// Environment variables read by parseEnv.
const (
	EnvConfigFile     = "USERDASH_SERVER_CONFIG"
	EnvHTTPAddr       = "USERDASH_HTTP_ADDR"
	EnvGRPCAddr       = "USERDASH_GRPC_ADDR"
	EnvMetricsAddr    = "USERDASH_METRICS_ADDR"
	EnvDatabaseDSN    = "DATABASE_DSN"
	EnvRedisAddr      = "REDIS_ADDR"
	EnvRedisPassword  = "REDIS_PASSWORD"
	EnvRedisDB        = "REDIS_DB"
	EnvSecretKey      = "USERDASH_SECRET_KEY"
	EnvAccessTTL      = "USERDASH_ACCESS_TTL"
	EnvRefreshTTL     = "USERDASH_REFRESH_TTL"
	EnvRotateRefresh  = "USERDASH_ROTATE_REFRESH"
	EnvServerLogLevel = "USERDASH_LOG_LEVEL"
)

func parseEnv(cfg *Config) {
	cfg.HTTPAddr = envx.String(EnvHTTPAddr, cfg.HTTPAddr)
	cfg.GRPCAddr = envx.String(EnvGRPCAddr, cfg.GRPCAddr)
	cfg.MetricsAddr = envx.String(EnvMetricsAddr, cfg.MetricsAddr)
	cfg.DatabaseDSN = envx.String(EnvDatabaseDSN, cfg.DatabaseDSN)
	cfg.RedisAddr = envx.String(EnvRedisAddr, cfg.RedisAddr)
	cfg.RedisPassword = envx.String(EnvRedisPassword, cfg.RedisPassword)
	cfg.RedisDB = envx.Int(EnvRedisDB, cfg.RedisDB)
	cfg.SecretKey = envx.String(EnvSecretKey, cfg.SecretKey)
	cfg.AccessTokenValidityDuration = envx.Duration(EnvAccessTTL, cfg.AccessTokenValidityDuration)
	cfg.RefreshTokenValidityDuration = envx.Duration(EnvRefreshTTL, cfg.RefreshTokenValidityDuration)
	cfg.RotateRefreshTokens = envx.Bool(EnvRotateRefresh, cfg.RotateRefreshTokens)
	cfg.LogLevel = envx.String(EnvServerLogLevel, cfg.LogLevel)
}

package config

import "github.com/cryptobulldev/userdash/internal/envx"

// Environment variables read by parseEnv.
const (
	EnvConfigFile     = "USERDASH_CONFIG"
	EnvAPIBaseURL     = "USERDASH_API_URL"
	EnvGRPCAddr       = "USERDASH_GRPC_ADDR"
	EnvRequestTimeout = "USERDASH_REQUEST_TIMEOUT"
	EnvRefreshTimeout = "USERDASH_REFRESH_TIMEOUT"
	EnvDataDir        = "USERDASH_DATA_DIR"
	EnvEncryptSession = "USERDASH_ENCRYPT_SESSION"
	EnvLogLevel       = "USERDASH_LOG_LEVEL"
	EnvLogFormat      = "USERDASH_LOG_FORMAT"
	EnvPageSize       = "USERDASH_PAGE_SIZE"
)

// parseEnv overlays cfg with any USERDASH_* variables that are set.
func parseEnv(cfg *Config) {
	cfg.APIBaseURL = envx.String(EnvAPIBaseURL, cfg.APIBaseURL)
	cfg.GRPCAddr = envx.String(EnvGRPCAddr, cfg.GRPCAddr)
	cfg.RequestTimeout = envx.Duration(EnvRequestTimeout, cfg.RequestTimeout)
	cfg.RefreshTimeout = envx.Duration(EnvRefreshTimeout, cfg.RefreshTimeout)
	cfg.DataDir = envx.String(EnvDataDir, cfg.DataDir)
	cfg.EncryptSession = envx.Bool(EnvEncryptSession, cfg.EncryptSession)
	cfg.LogLevel = envx.String(EnvLogLevel, cfg.LogLevel)
	cfg.LogFormat = envx.String(EnvLogFormat, cfg.LogFormat)
	cfg.PageSize = envx.Int(EnvPageSize, cfg.PageSize)
}

package config

import (
	"encoding/json"
	"os"

	"github.com/cryptobulldev/userdash/internal/flagx"
	"github.com/cryptobulldev/userdash/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept "15s" or integer nanoseconds. Absent fields keep their previous
// value.
type JsonConfig struct {
	APIBaseURL     string          `json:"api_base_url"`
	GRPCAddr       string          `json:"grpc_addr"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	RefreshTimeout *timex.Duration `json:"refresh_timeout"`
	DataDir        string          `json:"data_dir"`
	EncryptSession *bool           `json:"encrypt_session"`
	LogLevel       string          `json:"log_level"`
	LogFormat      string          `json:"log_format"`
	PageSize       int             `json:"page_size"`
}

// parseJson overlays cfg with the file named by -c/-config or
// USERDASH_CONFIG. It panics on read or decode errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath(EnvConfigFile)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc JsonConfig) apply(cfg *Config) {
	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.GRPCAddr != "" {
		cfg.GRPCAddr = jc.GRPCAddr
	}
	if jc.RequestTimeout != nil && jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RefreshTimeout != nil && jc.RefreshTimeout.Duration > 0 {
		cfg.RefreshTimeout = jc.RefreshTimeout.Duration
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.EncryptSession != nil {
		cfg.EncryptSession = *jc.EncryptSession
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LogFormat != "" {
		cfg.LogFormat = jc.LogFormat
	}
	if jc.PageSize > 0 {
		cfg.PageSize = jc.PageSize
	}
}

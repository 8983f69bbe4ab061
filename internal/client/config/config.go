package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the dashboard CLI.
type Config struct {
	// APIBaseURL is the REST API root, e.g. http://localhost:5000/api.
	APIBaseURL string
	// GRPCAddr is host:port of the API's gRPC listener, used by ping.
	GRPCAddr string

	RequestTimeout time.Duration
	RefreshTimeout time.Duration

	// DataDir holds the local database and the session key file.
	DataDir string
	// EncryptSession seals the persisted session with a local key file.
	EncryptSession bool

	LogLevel  string
	LogFormat string

	PageSize int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:5000/api"
	c.GRPCAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	c.RefreshTimeout = 15 * time.Second
	c.DataDir = defaultDataDir()
	c.EncryptSession = true
	c.LogLevel = "warn"
	c.LogFormat = "text"
	c.PageSize = 10
}

// DatabasePath is the SQLite file inside DataDir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "userdash.db")
}

// KeyPath is the session sealing key inside DataDir.
func (c *Config) KeyPath() string {
	return filepath.Join(c.DataDir, "session.key")
}

// LoadConfig applies defaults, then overlays the JSON file, the environment
// and finally command-line flags. Later sources win.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "userdash")
	}
	return ".userdash"
}

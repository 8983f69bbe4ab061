package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseJson(t *testing.T) {
	path := writeConfig(t, `{
		"api_base_url": "http://api:8080/api",
		"request_timeout": "2s",
		"refresh_timeout": 5000000000,
		"encrypt_session": false,
		"log_level": "debug"
	}`)

	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd", "-config", path}
	t.Setenv(EnvConfigFile, "")

	cfg := &Config{GRPCAddr: "keep:1", EncryptSession: true, PageSize: 10}
	require.NotPanics(t, func() { parseJson(cfg) })

	want := &Config{
		APIBaseURL:     "http://api:8080/api",
		GRPCAddr:       "keep:1",
		RequestTimeout: 2 * time.Second,
		RefreshTimeout: 5 * time.Second,
		EncryptSession: false,
		LogLevel:       "debug",
		PageSize:       10,
	}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestParseJson_FromEnv(t *testing.T) {
	path := writeConfig(t, `{"grpc_addr": "env-file:9"}`)

	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd"}
	t.Setenv(EnvConfigFile, path)

	cfg := &Config{}
	parseJson(cfg)
	assert.Equal(t, "env-file:9", cfg.GRPCAddr)
}

func TestParseJson_Errors(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	t.Setenv(EnvConfigFile, "")

	t.Run("missing file", func(t *testing.T) {
		os.Args = []string{"cmd", "-c", filepath.Join(t.TempDir(), "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("bad json", func(t *testing.T) {
		os.Args = []string{"cmd", "-c", writeConfig(t, `{"request_timeout": true}`)}
		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("no file selected", func(t *testing.T) {
		os.Args = []string{"cmd"}
		cfg := &Config{APIBaseURL: "x"}
		require.NotPanics(t, func() { parseJson(cfg) })
		assert.Equal(t, "x", cfg.APIBaseURL)
	})
}

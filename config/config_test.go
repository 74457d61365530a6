package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/rcindex/config"
	"github.com/sagarc03/rcindex/provision"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.False(t, cfg.IsProd())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Server.RateLimit.Enabled())
	assert.Equal(t, 10, cfg.Server.RateLimit.Burst)
	assert.Equal(t, time.Second, cfg.Server.RateLimit.Wait)
	assert.Equal(t, filepath.Join(os.TempDir(), "rcindex"), cfg.Scratch.Dir)
	assert.Equal(t, provision.DefaultDownloadURL, cfg.Rclone.DownloadURL)
	assert.Equal(t, "rclone", cfg.Rclone.BinaryName)
	assert.Equal(t, "rclone.conf", cfg.Rclone.ConfigName)
	assert.Equal(t, 25*time.Second, cfg.Rclone.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Rclone.KillGrace)
	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"GET", "POST", "OPTIONS"}, cfg.CORS.AllowedMethods)
	assert.Equal(t, []string{"Content-Type"}, cfg.CORS.AllowedHeaders)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	configPath := writeConfig(t, "rcindex.yaml", `
env: prod
server:
  host: 127.0.0.1
  port: 9000
  rate_limit:
    rps: 2.5
    burst: 4
scratch:
  dir: /var/cache/rcindex
rclone:
  download_url: https://mirror.example.com/rclone.zip
  binary_name: rclone-v1
  timeout: 10s
log:
  level: debug
`)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	assert.True(t, cfg.IsProd())
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, 2.5, cfg.Server.RateLimit.RPS)
	assert.Equal(t, 4, cfg.Server.RateLimit.Burst)
	assert.Equal(t, "/var/cache/rcindex", cfg.Scratch.Dir)
	assert.Equal(t, "https://mirror.example.com/rclone.zip", cfg.Rclone.DownloadURL)
	assert.Equal(t, "rclone-v1", cfg.Rclone.BinaryName)
	assert.Equal(t, 10*time.Second, cfg.Rclone.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)

	// untouched keys keep defaults
	assert.Equal(t, "rclone.conf", cfg.Rclone.ConfigName)
}

func TestLoad_ConfigFileMerge(t *testing.T) {
	basePath := writeConfig(t, "base.yaml", `
server:
  port: 8081
rclone:
  timeout: 20s
log:
  level: warn
`)
	overridePath := writeConfig(t, "override.yaml", `
server:
  port: 9000
`)

	cfg, err := config.Load([]string{basePath, overridePath}, nil)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 20*time.Second, cfg.Rclone.Timeout)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_WithCORS(t *testing.T) {
	configPath := writeConfig(t, "rcindex.yaml", `
cors:
  enabled: true
  allowed_origins:
    - https://example.com
  allowed_methods:
    - GET
  max_age: 600
`)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"GET"}, cfg.CORS.AllowedMethods)
	assert.Equal(t, 600, cfg.CORS.MaxAge)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid port", "server:\n  port: 99999\n"},
		{"invalid log level", "log:\n  level: verbose\n"},
		{"invalid env", "env: staging\n"},
		{"invalid download url", "rclone:\n  download_url: not a url\n"},
		{"binary name with slash", "rclone:\n  binary_name: bin/rclone\n"},
		{"timeout too short", "rclone:\n  timeout: 10ms\n"},
		{"negative rate limit", "server:\n  rate_limit:\n    rps: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, "rcindex.yaml", tt.content)

			_, err := config.Load([]string{configPath}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validate config")
		})
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("RCINDEX_SERVER_PORT", "9090")
	t.Setenv("RCINDEX_SCRATCH_DIR", "/srv/scratch")
	t.Setenv("RCINDEX_RCLONE_TIMEOUT", "5s")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/srv/scratch", cfg.Scratch.Dir)
	assert.Equal(t, 5*time.Second, cfg.Rclone.Timeout)
}

func TestLoad_Flags(t *testing.T) {
	t.Setenv("RCINDEX_SERVER_PORT", "9090")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 0, "")
	flags.String("scratch-dir", "", "")
	flags.String("unrelated", "", "")
	require.NoError(t, flags.Parse([]string{"--port", "7000", "--unrelated", "x"}))

	cfg, err := config.Load(nil, flags)
	require.NoError(t, err)

	// flag beats env
	assert.Equal(t, 7000, cfg.Server.Port)
	// unset flag does not clobber the default
	assert.Equal(t, filepath.Join(os.TempDir(), "rcindex"), cfg.Scratch.Dir)
}

func TestFromContext_Missing(t *testing.T) {
	_, err := config.FromContext(context.Background())
	assert.Error(t, err)
}

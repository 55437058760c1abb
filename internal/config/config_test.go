package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"PORT", "BACKEND_URL", "STAGING_DIR", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_WritesDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "pdfqa.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8089, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, filepath.Join(dir, "data", "staging"), cfg.GetStagingDir())

	_, err = os.Stat(path)
	assert.NoError(t, err, "default config should be written")

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "pdfqa.yaml")
	content := `
server:
  port: 9000
backend:
  baseURL: https://qa.example.com
storage:
  stagingDirectory: /tmp/pdfqa
advanced:
  logLevel: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.BindAddress, "unset keys keep defaults")
	assert.Equal(t, "https://qa.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "/tmp/pdfqa", cfg.GetStagingDir())
	assert.Equal(t, "127.0.0.1:9000", cfg.GetServerAddr())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "pdfqa.yaml")
	t.Setenv("PORT", "7000")
	t.Setenv("BACKEND_URL", "http://backend:8000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "http://backend:8000", cfg.Backend.BaseURL)
	assert.Equal(t, "warn", cfg.Advanced.LogLevel)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "broken yaml", content: "server: [unclosed"},
		{name: "bad backend url", content: "backend:\n  baseURL: localhost:8000\n"},
		{name: "bad port", content: "server:\n  port: 70000\n"},
		{name: "bad log level", content: "advanced:\n  logLevel: chatty\n"},
		{name: "bad PORT env", content: "", env: map[string]string{"PORT": "eighty"}},
		{name: "unparsable body limit", content: "server:\n  bodyLimit: lots\n"},
		{name: "zero cleanup interval", content: "storage:\n  cleanupIntervalMinutes: 0\n"},
		{name: "negative stale age", content: "storage:\n  staleUploadMinutes: -5\n"},
		{name: "compression level too high", content: "advanced:\n  compressionLevel: 10\n"},
		{name: "compression level too low", content: "advanced:\n  compressionLevel: -3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "pdfqa.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = ParseLogLevel("loud")
	assert.Error(t, err)
}

func TestFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("BACKEND_URL", "https://qa.example.com")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := FromEnvironment()
	require.NoError(t, err)
	assert.Equal(t, "https://qa.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "warn", cfg.Advanced.LogLevel)

	t.Setenv("BACKEND_URL", "qa.example.com")
	_, err = FromEnvironment()
	assert.Error(t, err)
}

func TestValidate_AcceptsEdgeValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.BodyLimit = "512K"
	cfg.Storage.CleanupIntervalMinutes = 1
	cfg.Advanced.CompressionLevel = -2
	assert.NoError(t, cfg.Validate())

	cfg.Advanced.CompressionLevel = 9
	assert.NoError(t, cfg.Validate())
}

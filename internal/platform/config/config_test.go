package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// TestLoad_DefaultValues tests that hardcoded defaults are applied correctly.
func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load("", WithConfigDir(t.TempDir()), WithEnvFile(""))
	require.NoError(t, err)

	assert.Equal(t, "zapallo-backoffice", cfg.App.Name)
	assert.Equal(t, "local", cfg.App.Environment)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultAPIPrefix, cfg.API.Prefix)
	assert.Equal(t, DefaultAPITimeout, cfg.API.Timeout)
	assert.Empty(t, cfg.API.APIKey)
	assert.Equal(t, DefaultClientCircuitMaxFailures, cfg.Client.CircuitBreaker.MaxFailures)
	assert.Equal(t, "backoffice_flash", cfg.Web.FlashCookie)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DurationParsing(t *testing.T) {
	cfg, err := Load("", WithConfigDir(t.TempDir()), WithEnvFile(""))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 90*time.Second, cfg.Client.Transport.IdleConnTimeout)
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("APP_LOG_LEVEL", "warn")
	t.Setenv("APP_API_BASE_URL", "https://api.zapallo.test/")
	t.Setenv("APP_API_KEY", "secret-key")
	t.Setenv("APP_NOT_A_KEY", "ignored")
	t.Setenv("APP_TELEMETRY_ENABLED", "true")

	cfg, err := Load("", WithConfigDir(t.TempDir()), WithEnvFile(""))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "https://api.zapallo.test/", cfg.API.BaseURL)
	assert.Equal(t, "secret-key", cfg.API.APIKey)
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestLoad_APITimeout(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"bare milliseconds", "5000", 5 * time.Second},
		{"duration string", "1m30s", 90 * time.Second},
		{"small milliseconds", "50", 50 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_API_TIMEOUT", tt.value)

			cfg, err := Load("", WithConfigDir(t.TempDir()), WithEnvFile(""))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.API.Timeout)
		})
	}
}

func TestLoad_LegacyEnvNames(t *testing.T) {
	t.Setenv("API_URL", "http://legacy:8000")
	t.Setenv("API_TIMEOUT", "2000")
	t.Setenv("API_KEY", "legacy-key")

	cfg, err := Load("", WithConfigDir(t.TempDir()), WithEnvFile(""))
	require.NoError(t, err)

	assert.Equal(t, "http://legacy:8000", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	assert.Equal(t, "legacy-key", cfg.API.APIKey)
}

func TestLoad_PrefixedEnvBeatsLegacy(t *testing.T) {
	t.Setenv("API_URL", "http://legacy:8000")
	t.Setenv("APP_API_BASE_URL", "http://preferred:8000")

	cfg, err := Load("", WithConfigDir(t.TempDir()), WithEnvFile(""))
	require.NoError(t, err)

	assert.Equal(t, "http://preferred:8000", cfg.API.BaseURL)
}

func TestLoad_YAMLProfile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "api:\n  base_url: http://base:8000\n  timeout: 10s\nlog:\n  level: debug\n")
	writeFile(t, dir, "qa.yaml", "api:\n  base_url: http://qa:8000\n  timeout: 2500\n")

	cfg, err := Load("qa", WithConfigDir(dir), WithEnvFile(""))
	require.NoError(t, err)

	assert.Equal(t, "http://qa:8000", cfg.API.BaseURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.API.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_NonExistentProfile(t *testing.T) {
	cfg, err := Load("nonexistent", WithConfigDir(t.TempDir()), WithEnvFile(""))
	require.NoError(t, err)

	assert.Equal(t, "zapallo-backoffice", cfg.App.Name)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "api: [unclosed")

	_, err := Load("", WithConfigDir(dir), WithEnvFile(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading base config")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "APP_API_BASE_URL=http://dotenv:8000\nAPI_KEY=from-dotenv\nUNRELATED=1\n")

	cfg, err := Load("", WithConfigDir(dir), WithEnvFile(envFile))
	require.NoError(t, err)

	assert.Equal(t, "http://dotenv:8000", cfg.API.BaseURL)
	assert.Equal(t, "from-dotenv", cfg.API.APIKey)
	_, set := os.LookupEnv("APP_API_BASE_URL")
	assert.False(t, set, "dotenv values must not leak into the process environment")
}

func TestLoad_EnvBeatsDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "APP_LOG_LEVEL=debug\n")
	t.Setenv("APP_LOG_LEVEL", "error")

	cfg, err := Load("", WithConfigDir(dir), WithEnvFile(envFile))
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_Flags(t *testing.T) {
	t.Setenv("APP_API_BASE_URL", "http://from-env:8000")

	fs := NewFlagSet("backoffice")
	require.NoError(t, fs.Parse([]string{"--api-url", "http://from-flag:8000", "--api-timeout", "750", "--open"}))

	cfg, err := Load("", WithConfigDir(t.TempDir()), WithEnvFile(""), WithFlags(fs))
	require.NoError(t, err)

	assert.Equal(t, "http://from-flag:8000", cfg.API.BaseURL)
	assert.Equal(t, 750*time.Millisecond, cfg.API.Timeout)
	assert.True(t, cfg.Web.OpenBrowser)
}

func TestLoad_UnsetFlagsKeepLowerLayers(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9999")

	fs := NewFlagSet("backoffice")
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load("", WithConfigDir(t.TempDir()), WithEnvFile(""), WithFlags(fs))
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestEnvVarName(t *testing.T) {
	assert.Equal(t, "APP_API_BASE_URL", EnvVarName("api.base_url"))
	assert.Equal(t, "APP_CLIENT_CIRCUIT_BREAKER_MAX_FAILURES", EnvVarName("client.circuit_breaker.max_failures"))
}

func TestServerConfig_Addr(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 8080}
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
}

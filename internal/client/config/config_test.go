package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAPIURL, EnvStorePath, EnvRequestTimeout, EnvLogLevel, EnvLogBackend} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:3000", c.APIBaseURL)
	assert.Equal(t, "userdesk.db", c.StorePath)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "slog", c.LogBackend)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	clearEnv(t)
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://localhost:3000", cfg.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_Precedence(t *testing.T) {
	clearEnv(t)
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	envFile := writeTempFile(t, dir, "test.env", "USERDESK_API_URL=http://from-env-file\nUSERDESK_STORE=env.db\nUSERDESK_LOG_LEVEL=warn\n")
	jsonFile := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"store_path":      "json.db",
		"request_timeout": "30s",
	})
	t.Setenv(EnvLogLevel, "debug")

	os.Args = []string{"testbin", "-e", envFile, "-c", jsonFile, "-a", "http://from-flag"}

	cfg := LoadConfig()

	assert.Equal(t, "http://from-flag", cfg.APIBaseURL)
	assert.Equal(t, "json.db", cfg.StorePath)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "slog", cfg.LogBackend)
}

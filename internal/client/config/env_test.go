package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_parseEnv(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	dir := t.TempDir()

	t.Run("process environment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvAPIURL, "https://api.example.com")
		t.Setenv(EnvRequestTimeout, "1m")
		t.Setenv(EnvLogBackend, "zap")
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseEnv(cfg)

		assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
		assert.Equal(t, time.Minute, cfg.RequestTimeout)
		assert.Equal(t, "zap", cfg.LogBackend)
		assert.Equal(t, "userdesk.db", cfg.StorePath)
	})

	t.Run("dotenv file, environment wins", func(t *testing.T) {
		clearEnv(t)
		path := writeTempFile(t, dir, "a.env", "# local overrides\nUSERDESK_STORE=/tmp/ud.db\nUSERDESK_LOG_LEVEL=debug\nUNRELATED_FROM_FILE=1\n")
		t.Setenv(EnvLogLevel, "error")
		os.Args = []string{"testbin", "-env", path}

		cfg := &Config{}
		parseEnv(cfg)

		assert.Equal(t, "/tmp/ud.db", cfg.StorePath)
		assert.Equal(t, "error", cfg.LogLevel)
		_, set := os.LookupEnv("UNRELATED_FROM_FILE")
		assert.False(t, set)
	})

	t.Run("missing explicit file panics", func(t *testing.T) {
		clearEnv(t)
		os.Args = []string{"testbin", "-e", filepath.Join(dir, "nope.env")}
		require.Panics(t, func() { parseEnv(&Config{}) })
	})

	t.Run("bad timeout panics", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvRequestTimeout, "soon")
		os.Args = []string{"testbin"}
		require.Panics(t, func() { parseEnv(&Config{}) })
	})
}

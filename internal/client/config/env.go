package config

import (
	"errors"
	"os"
	"time"

	"github.com/dmitrijs2005/userdesk/internal/flagx"
	"github.com/joho/godotenv"
)

const (
	EnvAPIURL         = "USERDESK_API_URL"
	EnvStorePath      = "USERDESK_STORE"
	EnvRequestTimeout = "USERDESK_REQUEST_TIMEOUT"
	EnvLogLevel       = "USERDESK_LOG_LEVEL"
	EnvLogBackend     = "USERDESK_LOG_BACKEND"

	defaultEnvFile = ".env"
)

// parseEnv overlays Config with USERDESK_* variables.
//
// Values are read from a dotenv file first (-e/-env, or ./.env when it
// exists) and then from non-empty process variables, which win. The file is
// only read; the process environment is not modified.
//
// Panics when an explicitly requested file cannot be read or a timeout does
// not parse as a duration.
func parseEnv(cfg *Config) {
	values := map[string]string{}

	path := flagx.EnvFileFlags()
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	fileValues, err := godotenv.Read(path)
	switch {
	case err == nil:
		values = fileValues
	case explicit || !errors.Is(err, os.ErrNotExist):
		panic(err)
	}

	for _, key := range []string{EnvAPIURL, EnvStorePath, EnvRequestTimeout, EnvLogLevel, EnvLogBackend} {
		if v := os.Getenv(key); v != "" {
			values[key] = v
		}
	}

	if v := values[EnvAPIURL]; v != "" {
		cfg.APIBaseURL = v
	}
	if v := values[EnvStorePath]; v != "" {
		cfg.StorePath = v
	}
	if v := values[EnvRequestTimeout]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
	if v := values[EnvLogLevel]; v != "" {
		cfg.LogLevel = v
	}
	if v := values[EnvLogBackend]; v != "" {
		cfg.LogBackend = v
	}
}

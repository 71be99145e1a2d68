package config

import "time"

// Config holds runtime settings for the userdesk client.
//
// Fields:
//   - APIBaseURL: absolute base URL of the user-management API.
//   - StorePath: SQLite file keeping the session and credential cookies.
//   - RequestTimeout: per-request HTTP timeout.
//   - LogLevel: debug, info, warn or error.
//   - LogBackend: "slog" (text) or "zap" (JSON).
type Config struct {
	APIBaseURL     string
	StorePath      string
	RequestTimeout time.Duration
	LogLevel       string
	LogBackend     string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:3000"
	c.StorePath = "userdesk.db"
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "info"
	c.LogBackend = "slog"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (and .env file), JSON (if present) and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// Package config loads runtime configuration for the userdesk client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: a dotenv file (-e/-env, or ./.env if present) overlaid
//     by USERDESK_* process variables (see parseEnv).
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   API base URL
//	-s string   path of the local SQLite store
//	-t int      request timeout (seconds)
//	-l string   log level
//	-b string   log backend
//
// Environment variables
//
//	USERDESK_API_URL, USERDESK_STORE, USERDESK_REQUEST_TIMEOUT (e.g. "15s"),
//	USERDESK_LOG_LEVEL, USERDESK_LOG_BACKEND
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so values can be
// either strings like "10s" or integer nanoseconds:
//
//	{
//	  "api_url": "http://localhost:3000",
//	  "store_path": "userdesk.db",
//	  "request_timeout": "10s",
//	  "log_level": "info",
//	  "log_backend": "slog"
//	}
package config

// Package config loads runtime configuration for the taskdesk CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment (see parseEnv), after loading a dotenv file given via
//     -e or -env, or ./.env when present.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the task backend
//	-t int      request timeout (seconds)
//	-s string   local token database path
//
// Environment
//
//	TASKDESK_API_BASE_URL      base URL (NEXT_PUBLIC_API_BASE_URL is honored as a fallback)
//	TASKDESK_REQUEST_TIMEOUT   duration string, e.g. "10s"
//	TASKDESK_STORE_PATH        token database path; empty disables storage
//	TASKDESK_LOG_LEVEL         debug, info, warn, error
//	TASKDESK_LOG_FORMAT        text or json
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so values can be
// either strings like "10s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8000",
//	  "request_timeout": "10s",
//	  "store_path": ".taskdesk/taskdesk.db",
//	  "log_level": "info",
//	  "log_format": "json"
//	}
package config

package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/dmitrijs2005/taskdesk/internal/flagx"
	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvAPIBaseURL       = "TASKDESK_API_BASE_URL"
	EnvLegacyAPIBaseURL = "NEXT_PUBLIC_API_BASE_URL"
	EnvStorePath        = "TASKDESK_STORE_PATH"
	EnvLogLevel         = "TASKDESK_LOG_LEVEL"
	EnvLogFormat        = "TASKDESK_LOG_FORMAT"
	EnvRequestTimeout   = "TASKDESK_REQUEST_TIMEOUT"
)

// parseEnv overlays Config with environment variables.
//
// A dotenv file is loaded first: the one given via -e/-env (must exist), or
// ./.env when present. Variables already set in the process environment win
// over the file. TASKDESK_STORE_PATH may be set to "" to disable storage.
//
// Panics on an unreadable dotenv file or a malformed timeout.
func parseEnv(cfg *Config) {
	if file := flagx.EnvFileFlags(); file != "" {
		if err := godotenv.Load(file); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		cfg.APIBaseURL = v
	} else if v := os.Getenv(EnvLegacyAPIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v, ok := os.LookupEnv(EnvStorePath); ok {
		cfg.StorePath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv(EnvRequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
}

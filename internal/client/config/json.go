package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/taskdesk/internal/flagx"
	"github.com/dmitrijs2005/taskdesk/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell "absent" apart from "set to empty".
type JsonConfig struct {
	APIBaseURL     *string         `json:"api_base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	StorePath      *string         `json:"store_path"`
	LogLevel       *string         `json:"log_level"`
	LogFormat      *string         `json:"log_format"`
}

// parseJson overlays Config with values loaded from the JSON file given via
// -c or -config. Without the flag nothing is loaded. Only keys present in
// the file are copied.
//
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != nil {
		cfg.APIBaseURL = *jc.APIBaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.StorePath != nil {
		cfg.StorePath = *jc.StorePath
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.LogFormat != nil {
		cfg.LogFormat = *jc.LogFormat
	}
}

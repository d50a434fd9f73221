package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/kapturehq/kapture/internal/flagx"
	"github.com/kapturehq/kapture/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s"
// or as integer nanoseconds.
type JsonConfig struct {
	APIBaseURL          string         `json:"api_base_url"`
	NotionVersion       string         `json:"notion_version"`
	DatabasePath        string         `json:"database_path"`
	TokenPath           string         `json:"token_path"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	OnlineProbeAddr     string         `json:"online_probe_addr"`
	MaxSyncAttempts     int            `json:"max_sync_attempts"`
}

// parseJson overlays cfg with values loaded from the JSON file named by the
// -c / -config flags. Empty JSON fields leave the existing value in place.
// Read or unmarshal errors panic; LoadConfig runs before any state exists,
// so a broken config file should stop the process.
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

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.NotionVersion != "" {
		cfg.NotionVersion = jc.NotionVersion
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.TokenPath != "" {
		cfg.TokenPath = jc.TokenPath
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.OnlineProbeAddr != "" {
		cfg.OnlineProbeAddr = jc.OnlineProbeAddr
	}
	if jc.MaxSyncAttempts != 0 {
		cfg.MaxSyncAttempts = jc.MaxSyncAttempts
	}
}

package config

import "time"

// Config holds runtime settings for the Kapture CLI.
//
// Fields:
//   - APIBaseURL: base URL of the Notion REST API.
//   - NotionVersion: value of the Notion-Version request header.
//   - DatabasePath: path of the local SQLite capture queue.
//   - TokenPath: path of the stored integration token file.
//   - OnlineCheckInterval: how often the client probes remote reachability.
//   - OnlineProbeAddr: host:port dialed by the connectivity monitor.
//   - MaxSyncAttempts: delivery attempts per entry before it is marked
//     permanently failed.
type Config struct {
	APIBaseURL          string
	NotionVersion       string
	DatabasePath        string
	TokenPath           string
	OnlineCheckInterval time.Duration
	OnlineProbeAddr     string
	MaxSyncAttempts     int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://api.notion.com/v1"
	c.NotionVersion = "2022-06-28"
	c.DatabasePath = "kapture.db"
	c.TokenPath = "kapture_token"
	c.OnlineCheckInterval = 3 * time.Second
	c.OnlineProbeAddr = "api.notion.com:443"
	c.MaxSyncAttempts = 3
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

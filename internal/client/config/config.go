package config

import "time"

// Config holds runtime settings for the admin console.
//
// Fields:
//   - ServerURL: base URL of the backend HTTP API.
//   - HeartbeatInterval: how often an authenticated session re-verifies
//     itself against the server.
//   - DatabaseDSN: path to the local SQLite state database.
type Config struct {
	ServerURL         string
	DatabaseDSN       string
	HeartbeatInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8000"
	c.DatabaseDSN = "console.db"
	c.HeartbeatInterval = 30 * time.Second
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

package config

import "time"

// Config holds runtime settings for the address book CLI.
//
// Fields:
//   - ServerURL: base URL of the REST API.
//   - RequestTimeout: per-request HTTP timeout.
//   - SessionFile: path of the local SQLite file that keeps the session.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - LogLevel: level of diagnostics written to stderr.
type Config struct {
	ServerURL           string
	RequestTimeout      time.Duration
	SessionFile         string
	OnlineCheckInterval time.Duration
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.RequestTimeout = 10 * time.Second
	c.SessionFile = "addressbook.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.LogLevel = "warn"
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

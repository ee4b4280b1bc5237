package config

import "time"

// Config holds runtime settings for the Videoflix client.
//
// Fields:
//   - ServerURL: base URL of the REST backend.
//   - DatabasePath: SQLite file holding the token and remembered credentials.
//   - RequestTimeout: per-request HTTP timeout.
//   - LogLevel, LogFormat: see logging.New.
//   - GuestUsername, GuestPassword: credentials used by the guest login.
//   - HomeURL, LoginURL: views entered after login and after losing a session.
type Config struct {
	ServerURL      string
	DatabasePath   string
	RequestTimeout time.Duration
	LogLevel       string
	LogFormat      string
	GuestUsername  string
	GuestPassword  string
	HomeURL        string
	LoginURL       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.DatabasePath = "videoflix.db"
	c.RequestTimeout = 15 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.GuestUsername = "guestuser"
	c.GuestPassword = "guestPassword123"
	c.HomeURL = "/home?visibility=public"
	c.LoginURL = "/login"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file, the environment and command-line flags. Later sources take
// precedence over earlier ones. Malformed input panics.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

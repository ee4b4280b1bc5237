package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/BayerTobias/videoflix/internal/flagx"
	"github.com/BayerTobias/videoflix/internal/timex"
)

// FileConfig is a DTO used exclusively for unmarshalling config files. It
// relies on timex.Duration so the timeout can be written either as "15s" or
// as integer nanoseconds. Empty fields leave the current value alone.
type FileConfig struct {
	ServerURL      string         `json:"server_url" yaml:"server_url"`
	DatabasePath   string         `json:"database_path" yaml:"database_path"`
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	LogLevel       string         `json:"log_level" yaml:"log_level"`
	LogFormat      string         `json:"log_format" yaml:"log_format"`
	GuestUsername  string         `json:"guest_username" yaml:"guest_username"`
	GuestPassword  string         `json:"guest_password" yaml:"guest_password"`
	HomeURL        string         `json:"home_url" yaml:"home_url"`
	LoginURL       string         `json:"login_url" yaml:"login_url"`
}

// parseFile overlays cfg with the file named by -c or -config. The format
// follows the extension: .yaml and .yml are YAML, anything else is JSON.
func parseFile(cfg *Config) {
	path := flagx.ConfigFile()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(fmt.Errorf("config file %s: %w", path, err))
	}

	fc.apply(cfg)
}

func (fc FileConfig) apply(cfg *Config) {
	setString(&cfg.ServerURL, fc.ServerURL)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.GuestUsername, fc.GuestUsername)
	setString(&cfg.GuestPassword, fc.GuestPassword)
	setString(&cfg.HomeURL, fc.HomeURL)
	setString(&cfg.LoginURL, fc.LoginURL)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

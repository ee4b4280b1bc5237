package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvServerURL     = "VIDEOFLIX_SERVER_URL"
	EnvDatabasePath  = "VIDEOFLIX_DB"
	EnvTimeout       = "VIDEOFLIX_TIMEOUT"
	EnvLogLevel      = "VIDEOFLIX_LOG_LEVEL"
	EnvLogFormat     = "VIDEOFLIX_LOG_FORMAT"
	EnvGuestUsername = "VIDEOFLIX_GUEST_USERNAME"
	EnvGuestPassword = "VIDEOFLIX_GUEST_PASSWORD"
)

// dotEnvFile is loaded before the environment is read. Variables already set
// in the process environment win over the file.
var dotEnvFile = ".env"

// parseEnv overlays cfg with VIDEOFLIX_* variables. VIDEOFLIX_TIMEOUT takes a
// Go duration ("30s"). A missing .env file is not an error.
func parseEnv(cfg *Config) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Errorf("load %s: %w", dotEnvFile, err))
	}

	setString(&cfg.ServerURL, os.Getenv(EnvServerURL))
	setString(&cfg.DatabasePath, os.Getenv(EnvDatabasePath))
	setString(&cfg.LogLevel, os.Getenv(EnvLogLevel))
	setString(&cfg.LogFormat, os.Getenv(EnvLogFormat))
	setString(&cfg.GuestUsername, os.Getenv(EnvGuestUsername))
	setString(&cfg.GuestPassword, os.Getenv(EnvGuestPassword))

	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", EnvTimeout, err))
		}
		cfg.RequestTimeout = d
	}
}

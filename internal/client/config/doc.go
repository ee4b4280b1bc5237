// Package config loads runtime configuration for the Videoflix client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .yaml or .yml are read as YAML, everything else as JSON.
//  3. A .env file in the working directory, then VIDEOFLIX_* environment
//     variables.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   base URL of the backend
//	-d string   path of the local SQLite database
//	-t int      request timeout (seconds)
//	-l string   log level
//
// # File schema
//
// Durations use timex.Duration, so they may be strings like "15s" or integer
// nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8000",
//	  "database_path": "videoflix.db",
//	  "request_timeout": "15s",
//	  "log_level": "debug",
//	  "log_format": "console"
//	}
package config

// Package config loads runtime configuration for the garagekeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   REST API base URL
//	-d string   path of the local sqlite token store
//	-t int      request timeout (seconds)
//	-l string   log level: debug, info, warn, error
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "10s"
// or integer nanoseconds. Fields left out keep their previous value:
//
//	{
//	  "api_url": "https://garage.example.com/api",
//	  "storage_path": "/var/lib/garagekeeper/tokens.db",
//	  "request_timeout": "10s",
//	  "log_level": "debug"
//	}
package config

package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the garagekeeper CLI.
type Config struct {
	// APIURL is the REST API root, e.g. "http://127.0.0.1:8000/api".
	APIURL string
	// StoragePath is the sqlite file holding the persisted token pair.
	StoragePath    string
	RequestTimeout time.Duration
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = "http://127.0.0.1:8000/api"
	c.StoragePath = "garagekeeper.db"
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "info"
}

// LoadConfig builds a Config from defaults, then the JSON file named by -c or
// -config, then the remaining flags. Later sources take precedence. args are
// the command-line arguments without the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("api url must not be empty")
	}
	return cfg, nil
}

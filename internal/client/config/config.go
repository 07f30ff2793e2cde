package config

import (
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config holds runtime settings for the kidkeeper CLI.
//
// RemoteDSN is optional; when empty, records stay in the local database.
type Config struct {
	LocalDBPath string
	RemoteDSN   string
	LogLevel    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.LocalDBPath = "kidkeeper.db"
	c.RemoteDSN = ""
	c.LogLevel = "info"
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LocalDBPath, validation.Required),
		validation.Field(&c.LogLevel, validation.Required, validation.In("debug", "info", "warn", "error")),
	)
}

// LoadConfig builds a Config from defaults, JSON, environment and the
// process command line, in that order.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

func load(args []string, lookup lookupFunc) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, args, lookup); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

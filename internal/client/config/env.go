package config

import (
	"fmt"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/kidkeeper/internal/flagx"
)

const (
	EnvLocalDBPath = "KIDKEEPER_DB"
	EnvRemoteDSN   = "KIDKEEPER_REMOTE_DSN"
	EnvLogLevel    = "KIDKEEPER_LOG_LEVEL"
)

type lookupFunc func(key string) (string, bool)

// parseEnv overlays cfg with KIDKEEPER_* variables. Values from the dotenv
// file named by -e/-env are used only for variables the environment lacks.
func parseEnv(cfg *Config, args []string, lookup lookupFunc) error {
	var fileVars map[string]string
	if path := flagx.StringFlag(args, "e", "env"); path != "" {
		vars, err := godotenv.Read(path)
		if err != nil {
			return fmt.Errorf("read env file: %w", err)
		}
		fileVars = vars
	}

	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}

	if v, ok := get(EnvLocalDBPath); ok {
		cfg.LocalDBPath = v
	}
	if v, ok := get(EnvRemoteDSN); ok {
		cfg.RemoteDSN = v
	}
	if v, ok := get(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	return nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/kidkeeper/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// leave the corresponding Config fields untouched.
type JsonConfig struct {
	LocalDBPath *string `json:"local_db_path"`
	RemoteDSN   *string `json:"remote_dsn"`
	LogLevel    *string `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c/-config, if any.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setIf(&cfg.LocalDBPath, jc.LocalDBPath)
	setIf(&cfg.RemoteDSN, jc.RemoteDSN)
	setIf(&cfg.LogLevel, jc.LogLevel)
	return nil
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/kidkeeper/internal/flagx"
)

// parseFlags populates Config fields from -d, -r and -l. Other arguments are
// filtered out with flagx.FilterArgs so they do not interfere.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-d", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.LocalDBPath, "d", cfg.LocalDBPath, "path of the local SQLite database")
	fs.StringVar(&cfg.RemoteDSN, "r", cfg.RemoteDSN, "PostgreSQL DSN of the shared record backend")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}

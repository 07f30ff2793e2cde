// Package migrations embeds the goose schema migrations for the local SQLite
// store and the remote PostgreSQL record backend.
package migrations

import "embed"

// Directory names inside FS.
const (
	SQLiteDir   = "sqlite"
	PostgresDir = "postgres"
)

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

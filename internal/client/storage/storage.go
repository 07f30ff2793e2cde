// Package storage opens the client databases, applies goose migrations and
// vends the repositories used by the services.
//
// The local SQLite database always holds device metadata. Records live in
// the same SQLite file unless a remote PostgreSQL DSN is configured, in which
// case they are written to the shared family backend instead.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/kidkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/kidkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/kidkeeper/internal/client/repositories/records"
	"github.com/dmitrijs2005/kidkeeper/internal/filex"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Storage bundles open databases and their repositories.
type Storage struct {
	Local    *sql.DB
	Remote   *sql.DB
	Metadata metadata.Repository
	Records  records.Repository
}

// Options selects the databases to open.
type Options struct {
	LocalPath string
	RemoteDSN string
}

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = goose.UpContext

// RunMigrations applies the embedded migrations in dir using the goose dialect.
func RunMigrations(ctx context.Context, db *sql.DB, dialect, dir string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrations (%s): %w", dialect, err)
	}
	return nil
}

// Open opens and migrates the configured databases.
func Open(ctx context.Context, opts Options) (*Storage, error) {
	if opts.LocalPath == "" {
		return nil, errors.New("local database path is required")
	}

	if err := filex.EnsureParentDir(opts.LocalPath); err != nil {
		return nil, err
	}

	local, err := sql.Open("sqlite", opts.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("open local db: %w", err)
	}
	// one writer at a time
	local.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, local, "sqlite3", migrations.SQLiteDir); err != nil {
		_ = local.Close()
		return nil, err
	}

	s := &Storage{
		Local:    local,
		Metadata: metadata.NewSQLiteRepository(local),
		Records:  records.NewSQLiteRepository(local),
	}
	if opts.RemoteDSN == "" {
		return s, nil
	}

	remote, err := openRemote(ctx, opts.RemoteDSN)
	if err != nil {
		_ = local.Close()
		return nil, err
	}
	s.Remote = remote
	s.Records = records.NewPostgresRepository(remote)
	return s, nil
}

func openRemote(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open remote db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping remote db: %w", err)
	}
	if err := RunMigrations(ctx, db, "postgres", migrations.PostgresDir); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Close closes every open database.
func (s *Storage) Close() error {
	var errs []error
	if s.Remote != nil {
		errs = append(errs, s.Remote.Close())
	}
	if s.Local != nil {
		errs = append(errs, s.Local.Close())
	}
	return errors.Join(errs...)
}

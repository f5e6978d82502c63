// Package store persists admin accounts and portfolio projects in a
// relational database. Postgres is the production backend; MySQL and SQLite
// are supported for alternative deployments and local development.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Options configures Open.
type Options struct {
	Dialect Dialect
	// DSN is the driver connection string. For SQLite it is a file path;
	// empty means an in-memory database.
	DSN  string
	Pool Pool
	// Now overrides the clock used for created_at/updated_at. Defaults to
	// time.Now.
	Now func() time.Time
}

// Store is the credential and project store. It is safe for concurrent use.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
	now     func() time.Time
}

// Open connects to the database described by opts and applies migrations.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Dialect == "" {
		opts.Dialect = SQLite
	}
	dsn, err := opts.Dialect.normalizeDSN(opts.DSN)
	if err != nil {
		return nil, err
	}
	if opts.Dialect == SQLite && opts.DSN != "" && opts.DSN != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(opts.DSN), 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sqlx.ConnectContext(ctx, opts.Dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", opts.Dialect, err)
	}

	if opts.Dialect == SQLite {
		db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

		// Enable foreign keys (off by default in SQLite).
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	} else {
		opts.Pool.apply(db)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &Store{db: db, dialect: opts.Dialect, now: now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// NewMemory opens a migrated in-memory SQLite store.
func NewMemory() (*Store, error) {
	return Open(context.Background(), Options{Dialect: SQLite})
}

// Dialect returns the backend the store is connected to.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// timestamp returns the current time at the precision every backend keeps.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

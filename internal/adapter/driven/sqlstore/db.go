// Package sqlstore implements the RecordStore port on SQLite or PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Driver names a supported SQL dialect.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

func init() {
	// Queries are written with '?' placeholders and rebound per dialect.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DB provides reader/writer connections for the configured dialect.
// For SQLite the writer is limited to a single connection to avoid
// "database is locked" errors and readers get a pool of 4. For PostgreSQL
// both fields share one pool.
type DB struct {
	Writer *sqlx.DB
	Reader *sqlx.DB
	Driver Driver
}

// Open connects to the database. For DriverSQLite dsn is a file path; for
// DriverPostgres it is a connection URL.
func Open(ctx context.Context, driver Driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite:
		return openSQLite(ctx, dsn)
	case DriverPostgres:
		return openPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// openSQLite creates a dual-connection SQLite database with WAL mode, busy timeout,
// synchronous NORMAL, foreign keys enabled, and a 64MB cache.
func openSQLite(ctx context.Context, dbPath string) (*DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)&_time_format=sqlite",
		dbPath,
	)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	if err := writer.PingContext(ctx); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("ping writer: %w", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(4)

	if err := reader.PingContext(ctx); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		return nil, fmt.Errorf("ping reader: %w", err)
	}

	return &DB{
		Writer: sqlx.NewDb(writer, "sqlite"),
		Reader: sqlx.NewDb(reader, "sqlite"),
		Driver: DriverSQLite,
	}, nil
}

func openPostgres(ctx context.Context, url string) (*DB, error) {
	pool, err := sqlx.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &DB{Writer: pool, Reader: pool, Driver: DriverPostgres}, nil
}

// Ping verifies both connections are alive.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.Writer.PingContext(ctx); err != nil {
		return fmt.Errorf("ping writer: %w", err)
	}
	if db.Reader != db.Writer {
		if err := db.Reader.PingContext(ctx); err != nil {
			return fmt.Errorf("ping reader: %w", err)
		}
	}
	return nil
}

// Close closes both reader and writer connections. Returns the first error encountered.
func (db *DB) Close() error {
	if db.Reader == db.Writer {
		if err := db.Writer.Close(); err != nil {
			return fmt.Errorf("close pool: %w", err)
		}
		return nil
	}

	var firstErr error

	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}

	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}

	return firstErr
}

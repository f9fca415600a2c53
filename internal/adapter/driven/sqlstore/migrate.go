package sqlstore

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// RunMigrations applies all pending migrations for the database dialect.
// It is safe to call on every startup; already-applied migrations are skipped.
func RunMigrations(db *DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations/"+string(db.Driver))
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	var dbDriver database.Driver
	switch db.Driver {
	case DriverSQLite:
		dbDriver, err = migratesqlite.WithInstance(db.Writer.DB, &migratesqlite.Config{})
	case DriverPostgres:
		dbDriver, err = migratepgx.WithInstance(db.Writer.DB, &migratepgx.Config{})
	default:
		return fmt.Errorf("unsupported database driver %q", db.Driver)
	}
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, string(db.Driver), dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

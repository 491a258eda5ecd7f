package iocache

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/benmcmorran/anamericanday/schema"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	mysqlmigrate "github.com/golang-migrate/migrate/v4/database/mysql"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// migrationOutcome describes what a migration did.
type migrationOutcome struct {
	from     uint
	to       uint
	noChange bool
}

// MigrateRuns runs database migrations for the run store.
// - If targetVersion < 0, it migrates to the latest version.
// - If targetVersion == 0, it rolls back all migrations (to initial state).
// - If targetVersion > 0, it migrates to the specified version.
func MigrateRuns(backend schema.DatabaseBackend, connStr string, targetVersion int) error {
	if backend == schema.NoneBackend {
		return fmt.Errorf("migrations are not supported for NoneBackend")
	}

	db, err := openDB(backend, connStr, GetRunDBFilePath())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	outcome, err := applyMigrations(db, backend, targetVersion)
	if err != nil {
		return err
	}

	switch {
	case outcome.noChange:
		fmt.Printf("No migration needed. Database is already at version %d\n", outcome.to)
	case outcome.to < outcome.from:
		fmt.Printf("Successfully rolled back from version %d to version %d\n", outcome.from, outcome.to)
	default:
		fmt.Printf("Successfully migrated from version %d to version %d\n", outcome.from, outcome.to)
	}
	return nil
}

// applyMigrations migrates db to targetVersion using the embedded migrations
// of the backend. The database handle stays open.
func applyMigrations(db *sql.DB, backend schema.DatabaseBackend, targetVersion int) (migrationOutcome, error) {
	var outcome migrationOutcome

	var driver database.Driver
	var err error
	switch backend {
	case schema.SQLiteBackend:
		driver, err = sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	case schema.MySQLBackend:
		driver, err = mysqlmigrate.WithInstance(db, &mysqlmigrate.Config{})
	case schema.PostgreSQLBackend:
		driver, err = pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	default:
		return outcome, fmt.Errorf("unsupported backend: %s", backend)
	}
	if err != nil {
		return outcome, fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}

	// Each backend has its own migrations subdirectory
	backendFS, err := fs.Sub(migrationsFS, "migrations/"+string(backend))
	if err != nil {
		return outcome, fmt.Errorf("failed to access migrations directory: %w", err)
	}
	sourceDriver, err := iofs.New(backendFS, ".")
	if err != nil {
		return outcome, fmt.Errorf("failed to create migration source: %w", err)
	}

	// m.Close would close db, so it is never called here
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "anamericanday", driver)
	if err != nil {
		return outcome, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return outcome, fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return outcome, fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", currentVersion)
	}
	outcome.from = currentVersion

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if errors.Is(err, migrate.ErrNoChange) {
		outcome.noChange = true
		outcome.to = currentVersion
		return outcome, nil
	}
	if err != nil {
		return outcome, fmt.Errorf("failed to migrate to version %d: %w", targetVersion, err)
	}

	newVersion, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return outcome, fmt.Errorf("failed to read migrated version: %w", err)
	}
	outcome.to = newVersion
	return outcome, nil
}

package database

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrDirtySchema means a previous migration failed halfway and the schema
// needs manual repair (migrate force) before the service can start.
var ErrDirtySchema = errors.New("database schema is dirty")

// RunMigrations brings the schema at dsn up to the newest file under
// migrationsPath.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if ver, dirty, err := m.Version(); err == nil && dirty {
		return fmt.Errorf("%w at version %d", ErrDirtySchema, ver)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		slog.Debug("database schema up to date")
	case err != nil:
		return fmt.Errorf("running migrations: %w", err)
	}

	ver, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("reading schema version: %w", err)
	}
	slog.Info("database migrations applied", "version", ver)
	return nil
}

package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"fundraiser/db/migrations"
)

// Migrate brings the database at addr to migrations.Version and returns the
// version it started from (0 for an empty database). A dirty schema is
// reported rather than forced.
func Migrate(addr string) (uint, error) {
	conn, err := sql.Open("postgres", addr)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	dbDriver, err := postgres.WithInstance(conn, &postgres.Config{MigrationsTable: "ledger_schema_migrations"})
	if err != nil {
		return 0, fmt.Errorf("migration driver: %w", err)
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return 0, err
	}
	defer src.Close()

	mg, err := migrate.NewWithInstance("iofs", src, "postgres", dbDriver)
	if err != nil {
		return 0, err
	}
	defer mg.Close()

	from, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, err
	}
	if dirty {
		return from, fmt.Errorf("schema version %d is dirty", from)
	}

	if err = mg.Migrate(migrations.Version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return from, err
	}
	return from, nil
}

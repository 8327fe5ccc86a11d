// Package postgres archives draws in a SQL database. PostgreSQL is the
// production target; SQLite serves local runs and tests.
package postgres

import (
	"context"
	"fmt"
	"time"

	apperrors "godesign/internal/errors"
	"godesign/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

// Supported driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the database and runs migrations.
func Open(ctx context.Context, driver, url string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, apperrors.ConfigInvalid(fmt.Sprintf("unsupported database driver %q", driver))
	}

	db, err := sqlx.ConnectContext(ctx, driver, url)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.DatabaseError(err.Error()), "failed to connect to database")
	}

	if driver == DriverSQLite {
		// One connection keeps :memory: databases alive and serializes writers.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Package database provides the SQL and in-memory backends of the payment
// ledger together with schema migrations.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/edgard/paybot/internal/config"
	"github.com/edgard/paybot/migrations"

	_ "github.com/jackc/pgx/v5/stdlib" //revive:disable:blank-imports
	_ "modernc.org/sqlite"             //revive:disable:blank-imports
)

// Supported SQL drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// NewDB connects to the configured SQL backend and applies migrations.
func NewDB(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	var (
		driverName string
		dsn        string
	)
	switch cfg.Driver {
	case DriverSQLite:
		path := ExtractDBNameFromPath(cfg.Path)
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		driverName = "sqlite"
		dsn = sqliteDSN(path)
	case DriverPostgres:
		driverName = "pgx"
		dsn = cfg.URL
	default:
		return nil, fmt.Errorf("unsupported SQL driver %q", cfg.Driver)
	}

	if err := ApplyMigrations(cfg.Driver, driverName, dsn); err != nil {
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	db, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("Database connected and migrations applied successfully", "driver", cfg.Driver)
	return db, nil
}

// CloseDB closes the database connection pool.
func CloseDB(db *sqlx.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		slog.Error("Error closing database connection", "error", err)
	} else {
		slog.Info("Database connection closed successfully.")
	}
}

// ApplyMigrations runs the embedded migrations of dialect over a dedicated
// connection that is closed afterwards.
func ApplyMigrations(dialect, driverName, dsn string) error {
	if dsn == "" {
		return errors.New("database DSN for migrations is empty")
	}

	slog.Info("Applying database migrations...", "dialect", dialect)

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	sourceDriver, err := iofs.New(migrations.FS, dialect)
	if err != nil {
		return fmt.Errorf("failed to create embed source driver instance: %w", err)
	}

	var migrator *migrate.Migrate
	switch dialect {
	case DriverSQLite:
		dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
		if err != nil {
			return fmt.Errorf("failed to create sqlite database driver: %w", err)
		}
		migrator, err = migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
		if err != nil {
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
	case DriverPostgres:
		dbDriver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
		if err != nil {
			return fmt.Errorf("failed to create pgx database driver: %w", err)
		}
		migrator, err = migrate.NewWithInstance("iofs", sourceDriver, "pgx5", dbDriver)
		if err != nil {
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
	default:
		return fmt.Errorf("no migrations for dialect %q", dialect)
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("No database migrations to apply.")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	slog.Info("Database migrations applied successfully.")
	return nil
}

// ExtractDBNameFromPath extracts the database file path from a possibly URL-formatted path.
func ExtractDBNameFromPath(path string) string {
	path = strings.TrimPrefix(path, "file:")

	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}

	if decoded, err := url.PathUnescape(path); err == nil {
		return decoded
	}

	return path
}

func sqliteDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

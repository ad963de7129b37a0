package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	// MemoryPath opens a private in-memory SQLite database
	MemoryPath = ":memory:"
)

// Config selects and configures the relational store
type Config struct {
	Driver     string
	SQLitePath string
	Postgres   PostgresConfig
}

// Open connects to the configured store and verifies the connection
func Open(ctx context.Context, cfg Config, log logrus.FieldLogger) (*sqlx.DB, error) {
	switch cfg.Driver {
	case "", DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath, log)
	case DriverPostgres:
		return OpenPostgres(ctx, cfg.Postgres, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// OpenSQLite opens the SQLite database file at path. MemoryPath is pinned to
// a single connection, since every new connection would see an empty database.
func OpenSQLite(ctx context.Context, path string, log logrus.FieldLogger) (*sqlx.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}

	log.WithField("path", path).Info("Opening SQLite database")

	dsn := path + "?_journal=WAL&_timeout=10000&_busy_timeout=10000"
	db, err := sqlx.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	// Connection pragmas for concurrent readers while a write is in flight
	for _, pragma := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA busy_timeout=5000;"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return db, nil
}

// IsPostgres reports whether db talks to PostgreSQL
func IsPostgres(db *sqlx.DB) bool {
	return db.DriverName() == DriverPostgres
}

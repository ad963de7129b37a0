package migrations

import (
	"context"
	"fmt"

	"moneymanager/backend/database"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// Migration is one named, idempotent schema step
type Migration struct {
	Name string
	Fn   func(ctx context.Context, tx *sqlx.Tx, postgres bool) error
}

// All lists every migration in the order it must be applied
var All = []Migration{
	{"create_transactions_table", CreateTransactionsTable},
	{"add_transactions_date_index", AddTransactionsDateIndex},
}

// Sync brings the schema up to date and verifies it. The process must not
// serve requests when Sync fails.
func Sync(ctx context.Context, db *sqlx.DB, log logrus.FieldLogger) error {
	if err := RunMigrations(ctx, db, log); err != nil {
		return err
	}
	if err := VerifySchema(ctx, db); err != nil {
		return err
	}
	log.Info("Database schema synced successfully")
	return nil
}

// RunMigrations executes all migrations in the correct order
func RunMigrations(ctx context.Context, db *sqlx.DB, log logrus.FieldLogger) error {
	log.Info("Running migrations...")

	postgres := database.IsPostgres(db)

	createMigrationsTable := `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`
	if postgres {
		createMigrationsTable = `
			CREATE TABLE IF NOT EXISTS migrations (
				id SERIAL PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				applied_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
			);
		`
	}
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, migration := range All {
		var count int
		err := db.GetContext(ctx, &count, db.Rebind("SELECT COUNT(*) FROM migrations WHERE name = ?"), migration.Name)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}

		if count > 0 {
			log.WithField("migration", migration.Name).Debug("Skipping already applied migration")
			continue
		}

		log.WithField("migration", migration.Name).Info("Applying migration")
		if err := apply(ctx, db, migration, postgres); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Name, err)
		}
	}

	log.Info("All migrations completed successfully")
	return nil
}

// apply runs a migration and records it in one database transaction
func apply(ctx context.Context, db *sqlx.DB, migration Migration, postgres bool) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := migration.Fn(ctx, tx, postgres); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO migrations (name) VALUES (?)"), migration.Name); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}

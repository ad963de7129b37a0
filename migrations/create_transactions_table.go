package migrations

import (
	"context"

	"github.com/jmoiron/sqlx"
)

const sqliteTransactionsTable = `
	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL CHECK (type IN ('income', 'expense', 'transfer')),
		division TEXT NOT NULL CHECK (division IN ('office', 'personal')),
		category TEXT,
		amount NUMERIC(10,2),
		description TEXT,
		date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		from_account TEXT,
		to_account TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

const postgresTransactionsTable = `
	CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		type TEXT NOT NULL CHECK (type IN ('income', 'expense', 'transfer')),
		division TEXT NOT NULL CHECK (division IN ('office', 'personal')),
		category TEXT,
		amount NUMERIC(10,2),
		description TEXT,
		date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		from_account TEXT,
		to_account TEXT,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

// CreateTransactionsTable creates the ledger table. AUTOINCREMENT keeps
// SQLite from reusing the ids of removed rows.
func CreateTransactionsTable(ctx context.Context, tx *sqlx.Tx, postgres bool) error {
	ddl := sqliteTransactionsTable
	if postgres {
		ddl = postgresTransactionsTable
	}
	_, err := tx.ExecContext(ctx, ddl)
	return err
}

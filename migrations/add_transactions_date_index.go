package migrations

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// AddTransactionsDateIndex indexes the business date used for ordering and range filters
func AddTransactionsDateIndex(ctx context.Context, tx *sqlx.Tx, _ bool) error {
	_, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions (date)`)
	return err
}

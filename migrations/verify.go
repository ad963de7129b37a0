package migrations

import (
	"context"
	"fmt"
	"strings"

	"moneymanager/backend/database"

	"github.com/jmoiron/sqlx"
)

// VerifySchema checks that the transactions table has every column the store reads and writes
func VerifySchema(ctx context.Context, db *sqlx.DB) error {
	missing, err := database.MissingColumns(ctx, db, "transactions", database.TransactionColumns)
	if err != nil {
		return fmt.Errorf("failed to verify schema: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("transactions table is missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

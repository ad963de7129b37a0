package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// GetColumnNames returns all column names for a given table
func GetColumnNames(ctx context.Context, db *sqlx.DB, tableName string) ([]string, error) {
	query := `SELECT name FROM pragma_table_info(?) ORDER BY cid`
	if IsPostgres(db) {
		query = `
			SELECT column_name
			FROM information_schema.columns
			WHERE table_name = $1
			ORDER BY ordinal_position
		`
	}

	var columns []string
	if err := db.SelectContext(ctx, &columns, query, tableName); err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", tableName, err)
	}
	return columns, nil
}

// MissingColumns returns the entries of expected that tableName lacks,
// or all of them when the table does not exist
func MissingColumns(ctx context.Context, db *sqlx.DB, tableName string, expected []string) ([]string, error) {
	columns, err := GetColumnNames(ctx, db, tableName)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(columns))
	for _, col := range columns {
		present[col] = true
	}

	var missing []string
	for _, col := range expected {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing, nil
}

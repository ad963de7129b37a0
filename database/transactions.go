package database

import (
	"context"
	"database/sql"
	"fmt"

	"moneymanager/backend/models"
	"moneymanager/backend/services"

	"github.com/jmoiron/sqlx"
)

// TransactionColumns lists the columns of the transactions table in select order
var TransactionColumns = []string{
	"id", "type", "division", "category", "amount", "description",
	"date", "from_account", "to_account", "created_at",
}

const selectTransactions = `
	SELECT id, type, division, category, amount, description, date, from_account, to_account, created_at
	FROM transactions
`

// TransactionStore persists transactions in the relational store
type TransactionStore struct {
	db *sqlx.DB
}

var _ services.Store = (*TransactionStore)(nil)

// NewTransactionStore wraps db. Queries are written with ? placeholders and
// rebound to the driver's style.
func NewTransactionStore(db *sqlx.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

// Insert stores tx and sets its ID
func (s *TransactionStore) Insert(ctx context.Context, tx *models.Transaction) error {
	query := s.db.Rebind(`
		INSERT INTO transactions (type, division, category, amount, description, date, from_account, to_account, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := s.db.QueryRowxContext(ctx, query,
		tx.Type,
		tx.Division,
		tx.Category,
		tx.Amount,
		tx.Description,
		tx.Date,
		tx.FromAccount,
		tx.ToAccount,
		tx.CreatedAt,
	).Scan(&tx.ID)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// Get loads one transaction. A missing row is reported as sql.ErrNoRows.
func (s *TransactionStore) Get(ctx context.Context, id int64) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.db.GetContext(ctx, &tx, s.db.Rebind(selectTransactions+" WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %d: %w", id, err)
	}
	return &tx, nil
}

// Update overwrites every mutable column of the row identified by tx.ID.
// created_at is never written.
func (s *TransactionStore) Update(ctx context.Context, tx *models.Transaction) error {
	query := s.db.Rebind(`
		UPDATE transactions
		SET type = ?, division = ?, category = ?, amount = ?, description = ?, date = ?, from_account = ?, to_account = ?
		WHERE id = ?
	`)

	result, err := s.db.ExecContext(ctx, query,
		tx.Type,
		tx.Division,
		tx.Category,
		tx.Amount,
		tx.Description,
		tx.Date,
		tx.FromAccount,
		tx.ToAccount,
		tx.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %d: %w", tx.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("transaction %d: %w", tx.ID, sql.ErrNoRows)
	}
	return nil
}

// List returns the transactions matching q, most recent date first
func (s *TransactionStore) List(ctx context.Context, q services.ListQuery) ([]models.Transaction, error) {
	query := selectTransactions + " WHERE 1=1"
	args := []interface{}{}

	if q.Division != "" {
		query += " AND division = ?"
		args = append(args, q.Division)
	}

	if q.Category != "" {
		query += " AND category = ?"
		args = append(args, q.Category)
	}

	if q.Range != nil {
		query += " AND date >= ? AND date <= ?"
		args = append(args, q.Range.Start, q.Range.End)
	}

	query += " ORDER BY date DESC, id DESC"

	transactions := []models.Transaction{}
	if err := s.db.SelectContext(ctx, &transactions, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	return transactions, nil
}

// SumByCategory totals amount per category. Uncategorised rows form their
// own group with a NULL category.
func (s *TransactionStore) SumByCategory(ctx context.Context) ([]models.CategoryTotal, error) {
	query := `
		SELECT category, SUM(amount) AS total
		FROM transactions
		GROUP BY category
	`

	totals := []models.CategoryTotal{}
	if err := s.db.SelectContext(ctx, &totals, query); err != nil {
		return nil, fmt.Errorf("failed to sum transactions by category: %w", err)
	}
	return totals, nil
}

// Ping checks that the store is reachable
func (s *TransactionStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

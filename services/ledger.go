package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"moneymanager/backend/models"

	"github.com/shopspring/decimal"
)

// DefaultEditWindow is how long after creation a transaction may still be modified
const DefaultEditWindow = 12 * time.Hour

// maxAmount is the exclusive bound of a NUMERIC(10,2) column
var maxAmount = decimal.New(1, 8)

// ListQuery is a validated list filter. A nil Range means no date filtering.
type ListQuery struct {
	Division string
	Category string
	Range    *models.DateRange
}

// Store is the relational store the ledger runs on. Get and Update report a
// missing row with sql.ErrNoRows.
type Store interface {
	Insert(ctx context.Context, tx *models.Transaction) error
	Get(ctx context.Context, id int64) (*models.Transaction, error)
	Update(ctx context.Context, tx *models.Transaction) error
	List(ctx context.Context, q ListQuery) ([]models.Transaction, error)
	SumByCategory(ctx context.Context) ([]models.CategoryTotal, error)
}

// Ledger records transactions and answers queries over them
type Ledger struct {
	store      Store
	editWindow time.Duration
	now        func() time.Time
}

// NewLedger creates a ledger on top of store. A non-positive editWindow
// falls back to DefaultEditWindow.
func NewLedger(store Store, editWindow time.Duration) *Ledger {
	if editWindow <= 0 {
		editWindow = DefaultEditWindow
	}
	return &Ledger{
		store:      store,
		editWindow: editWindow,
		now:        time.Now,
	}
}

// EditWindow returns the configured edit window
func (l *Ledger) EditWindow() time.Duration {
	return l.editWindow
}

func (l *Ledger) clock() time.Time {
	return l.now().UTC().Truncate(time.Microsecond)
}

// Create validates input and persists it as a new transaction
func (l *Ledger) Create(ctx context.Context, input models.TransactionInput) (*models.Transaction, error) {
	now := l.clock()

	tx := &models.Transaction{
		Type:        input.Type,
		Division:    input.Division,
		Category:    input.Category,
		Amount:      input.Amount,
		Description: input.Description,
		Date:        now,
		FromAccount: input.FromAccount,
		ToAccount:   input.ToAccount,
		CreatedAt:   now,
	}

	if input.Date != nil && *input.Date != "" {
		date, err := models.ParseDate(*input.Date)
		if err != nil {
			return nil, invalid(err.Error())
		}
		tx.Date = date
	}

	if err := validateTransaction(tx); err != nil {
		return nil, err
	}

	if err := l.store.Insert(ctx, tx); err != nil {
		return nil, storeRejected(err)
	}

	return tx, nil
}

// Transfer records money moving between two free-text accounts as a single
// transfer row
func (l *Ledger) Transfer(ctx context.Context, input models.TransferInput) (*models.Transaction, error) {
	return l.Create(ctx, models.TransactionInput{
		Type:        models.TypeTransfer,
		Division:    input.Division,
		Category:    input.Category,
		Amount:      input.Amount,
		Description: input.Description,
		FromAccount: input.FromAccount,
		ToAccount:   input.ToAccount,
	})
}

// Get returns a single transaction by id
func (l *Ledger) Get(ctx context.Context, id int64) (*models.Transaction, error) {
	tx, err := l.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load transaction %d: %w", id, err)
	}
	return tx, nil
}

// Update applies patch to the transaction with the given id, provided the
// edit window measured from its creation has not passed
func (l *Ledger) Update(ctx context.Context, id int64, patch models.TransactionPatch) (*models.Transaction, error) {
	current, err := l.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if l.clock().Sub(current.CreatedAt) > l.editWindow {
		return nil, ErrEditWindowExpired
	}

	updated := *current
	if err := applyPatch(&updated, patch); err != nil {
		return nil, err
	}

	if err := validateTransaction(&updated); err != nil {
		return nil, err
	}

	if err := l.store.Update(ctx, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storeRejected(err)
	}

	return &updated, nil
}

// List returns the transactions matching filter, most recent date first
func (l *Ledger) List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	q := ListQuery{
		Division: filter.Division,
		Category: filter.Category,
	}

	if filter.HasDateRange() {
		start, err := models.ParseDate(filter.Start)
		if err != nil {
			return nil, invalid("start: " + err.Error())
		}
		end, err := models.ParseDate(filter.End)
		if err != nil {
			return nil, invalid("end: " + err.Error())
		}
		q.Range = &models.DateRange{Start: start, End: end}
	}

	txs, err := l.store.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	return txs, nil
}

// SummarizeByCategory sums amounts per category regardless of type
func (l *Ledger) SummarizeByCategory(ctx context.Context) ([]models.CategoryTotal, error) {
	totals, err := l.store.SumByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize categories: %w", err)
	}

	for i := range totals {
		if totals[i].Total.Valid {
			totals[i].Total.Decimal = totals[i].Total.Decimal.Round(2)
		}
	}
	if totals == nil {
		totals = []models.CategoryTotal{}
	}
	return totals, nil
}

func applyPatch(tx *models.Transaction, patch models.TransactionPatch) error {
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	if patch.Division != nil {
		tx.Division = *patch.Division
	}
	if patch.Category != nil {
		tx.Category = patch.Category
	}
	if patch.Amount != nil {
		tx.Amount = decimal.NewNullDecimal(*patch.Amount)
	}
	if patch.Description != nil {
		tx.Description = patch.Description
	}
	if patch.Date != nil && *patch.Date != "" {
		date, err := models.ParseDate(*patch.Date)
		if err != nil {
			return invalid(err.Error())
		}
		tx.Date = date
	}
	if patch.FromAccount != nil {
		tx.FromAccount = patch.FromAccount
	}
	if patch.ToAccount != nil {
		tx.ToAccount = patch.ToAccount
	}
	return nil
}

func validateTransaction(tx *models.Transaction) error {
	if !tx.Type.Valid() {
		return invalid(fmt.Sprintf("type must be one of income, expense, transfer; got %q", tx.Type))
	}
	if !tx.Division.Valid() {
		return invalid(fmt.Sprintf("division must be one of office, personal; got %q", tx.Division))
	}
	if !tx.Amount.Valid {
		return invalid("amount is required")
	}

	amount := tx.Amount.Decimal
	if !amount.Round(2).Equal(amount) {
		return invalid("amount must have at most 2 decimal places")
	}
	if amount.Abs().GreaterThanOrEqual(maxAmount) {
		return invalid("amount must be less than 100000000")
	}
	return nil
}

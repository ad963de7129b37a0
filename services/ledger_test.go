package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"testing"
	"time"

	"moneymanager/backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore keeps rows in a map and mimics the relational store closely
// enough to exercise the ledger rules
type memoryStore struct {
	rows      map[int64]models.Transaction
	nextID    int64
	insertErr error
	listErr   error
	lastQuery ListQuery
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: map[int64]models.Transaction{}}
}

func (s *memoryStore) Insert(_ context.Context, tx *models.Transaction) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.nextID++
	tx.ID = s.nextID
	s.rows[tx.ID] = *tx
	return nil
}

func (s *memoryStore) Get(_ context.Context, id int64) (*models.Transaction, error) {
	tx, ok := s.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &tx, nil
}

func (s *memoryStore) Update(_ context.Context, tx *models.Transaction) error {
	if _, ok := s.rows[tx.ID]; !ok {
		return sql.ErrNoRows
	}
	s.rows[tx.ID] = *tx
	return nil
}

func (s *memoryStore) List(_ context.Context, q ListQuery) ([]models.Transaction, error) {
	s.lastQuery = q
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Transaction
	for _, tx := range s.rows {
		if q.Division != "" && string(tx.Division) != q.Division {
			continue
		}
		if q.Category != "" && (tx.Category == nil || *tx.Category != q.Category) {
			continue
		}
		if q.Range != nil && (tx.Date.Before(q.Range.Start) || tx.Date.After(q.Range.End)) {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *memoryStore) SumByCategory(_ context.Context) ([]models.CategoryTotal, error) {
	sums := map[string]decimal.Decimal{}
	var nullSum *decimal.Decimal
	for _, tx := range s.rows {
		if tx.Category == nil {
			sum := tx.Amount.Decimal
			if nullSum != nil {
				sum = nullSum.Add(sum)
			}
			nullSum = &sum
			continue
		}
		sums[*tx.Category] = sums[*tx.Category].Add(tx.Amount.Decimal)
	}
	var out []models.CategoryTotal
	for cat, sum := range sums {
		out = append(out, models.CategoryTotal{Category: &cat, Total: decimal.NewNullDecimal(sum)})
	}
	if nullSum != nil {
		out = append(out, models.CategoryTotal{Total: decimal.NewNullDecimal(*nullSum)})
	}
	return out, nil
}

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time { return c.current }

func (c *fakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

func newTestLedger(t *testing.T) (*Ledger, *memoryStore, *fakeClock) {
	t.Helper()
	store := newMemoryStore()
	clock := &fakeClock{current: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	ledger := NewLedger(store, 0)
	ledger.now = clock.Now
	return ledger, store, clock
}

func strPtr(s string) *string { return &s }

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func expenseInput(category, value string) models.TransactionInput {
	return models.TransactionInput{
		Type:     models.TypeExpense,
		Division: models.DivisionPersonal,
		Category: strPtr(category),
		Amount:   amount(value),
	}
}

func TestNewLedgerDefaultsEditWindow(t *testing.T) {
	assert.Equal(t, 12*time.Hour, NewLedger(newMemoryStore(), 0).EditWindow())
	assert.Equal(t, 2*time.Hour, NewLedger(newMemoryStore(), 2*time.Hour).EditWindow())
}

func TestCreateAssignsIDAndCreatedAt(t *testing.T) {
	ledger, _, clock := newTestLedger(t)
	ctx := context.Background()

	first, err := ledger.Create(ctx, expenseInput("Food", "12.50"))
	require.NoError(t, err)
	second, err := ledger.Create(ctx, expenseInput("Food", "3"))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Greater(t, second.ID, first.ID)
	assert.True(t, first.CreatedAt.Equal(clock.Now()))
	assert.True(t, first.Date.Equal(clock.Now()), "date should default to creation time")
}

func TestCreateKeepsSuppliedDate(t *testing.T) {
	ledger, _, clock := newTestLedger(t)

	input := expenseInput("Rent", "800")
	input.Date = strPtr("2024-02-01")

	tx, err := ledger.Create(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.True(t, tx.CreatedAt.Equal(clock.Now()))
}

func TestCreateValidation(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*models.TransactionInput)
		message string
	}{
		{name: "Unknown type", mutate: func(in *models.TransactionInput) { in.Type = "refund" }, message: "type must be one of"},
		{name: "Missing type", mutate: func(in *models.TransactionInput) { in.Type = "" }, message: "type must be one of"},
		{name: "Unknown division", mutate: func(in *models.TransactionInput) { in.Division = "home" }, message: "division must be one of"},
		{name: "Missing amount", mutate: func(in *models.TransactionInput) { in.Amount = decimal.NullDecimal{} }, message: "amount is required"},
		{name: "Too many decimals", mutate: func(in *models.TransactionInput) { in.Amount = amount("1.005") }, message: "at most 2 decimal places"},
		{name: "Too large", mutate: func(in *models.TransactionInput) { in.Amount = amount("100000000") }, message: "less than 100000000"},
		{name: "Bad date", mutate: func(in *models.TransactionInput) { in.Date = strPtr("01/02/2024") }, message: "invalid date"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ledger, store, _ := newTestLedger(t)
			input := expenseInput("Food", "10")
			tc.mutate(&input)

			_, err := ledger.Create(context.Background(), input)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Message, tc.message)
			assert.Empty(t, store.rows, "invalid input must not reach the store")
		})
	}
}

func TestCreateWrapsStoreFailureAsValidationError(t *testing.T) {
	ledger, store, _ := newTestLedger(t)
	store.insertErr = errors.New("CHECK constraint failed: division")

	_, err := ledger.Create(context.Background(), expenseInput("Food", "10"))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "CHECK constraint failed: division", verr.Message)
	assert.ErrorIs(t, err, store.insertErr)
}

func TestUpdateWithinEditWindow(t *testing.T) {
	ledger, store, clock := newTestLedger(t)
	ctx := context.Background()

	created, err := ledger.Create(ctx, models.TransactionInput{
		Type:        models.TypeIncome,
		Division:    models.DivisionOffice,
		Category:    strPtr("Salary"),
		Amount:      amount("1000"),
		Description: strPtr("March salary"),
	})
	require.NoError(t, err)

	clock.Advance(12 * time.Hour)

	newAmount := decimal.RequireFromString("1200.25")
	updated, err := ledger.Update(ctx, created.ID, models.TransactionPatch{Amount: &newAmount})
	require.NoError(t, err, "an update at exactly 12h must succeed")

	assert.True(t, updated.Amount.Decimal.Equal(newAmount))
	assert.Equal(t, "Salary", *updated.Category, "omitted fields stay unchanged")
	assert.Equal(t, "March salary", *updated.Description)
	assert.Equal(t, models.TypeIncome, updated.Type)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt), "createdAt is immutable")
	assert.True(t, store.rows[created.ID].Amount.Decimal.Equal(newAmount))
}

func TestUpdateAfterEditWindowLeavesRowUnchanged(t *testing.T) {
	ledger, store, clock := newTestLedger(t)
	ctx := context.Background()

	created, err := ledger.Create(ctx, expenseInput("Food", "20"))
	require.NoError(t, err)

	clock.Advance(12*time.Hour + time.Second)

	newAmount := decimal.RequireFromString("99")
	_, err = ledger.Update(ctx, created.ID, models.TransactionPatch{Amount: &newAmount})

	assert.ErrorIs(t, err, ErrEditWindowExpired)
	assert.True(t, store.rows[created.ID].Amount.Decimal.Equal(decimal.RequireFromString("20")))
}

func TestUpdateNonexistentIsNotFound(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	bogus := models.Division("nowhere")
	_, err := ledger.Update(context.Background(), 42, models.TransactionPatch{Division: &bogus})

	assert.ErrorIs(t, err, ErrNotFound)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr), "a missing row must never surface as a validation error")
}

func TestUpdateRejectsInvalidPatch(t *testing.T) {
	ledger, store, _ := newTestLedger(t)
	ctx := context.Background()

	created, err := ledger.Create(ctx, expenseInput("Food", "20"))
	require.NoError(t, err)

	bogus := models.TransactionType("gift")
	_, err = ledger.Update(ctx, created.ID, models.TransactionPatch{Type: &bogus})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, models.TypeExpense, store.rows[created.ID].Type)
}

func TestUpdateChangesDate(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()

	created, err := ledger.Create(ctx, expenseInput("Food", "20"))
	require.NoError(t, err)

	updated, err := ledger.Update(ctx, created.ID, models.TransactionPatch{Date: strPtr("2024-01-15T08:00:00Z")})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC), updated.Date)
}

func TestUpdateBlankDateKeepsDate(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()

	input := expenseInput("Food", "20")
	input.Date = strPtr("")
	created, err := ledger.Create(ctx, input)
	require.NoError(t, err)

	updated, err := ledger.Update(ctx, created.ID, models.TransactionPatch{Date: strPtr(""), Description: strPtr("lunch")})
	require.NoError(t, err)
	assert.Equal(t, created.Date, updated.Date)
	assert.Equal(t, "lunch", *updated.Description)
}

func TestGetMissingIsNotFound(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	_, err := ledger.Get(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListIgnoresSingleDateBound(t *testing.T) {
	ledger, store, _ := newTestLedger(t)
	ctx := context.Background()

	for _, date := range []string{"2024-01-01", "2024-02-01", "2024-03-01"} {
		input := expenseInput("Food", "1")
		input.Date = strPtr(date)
		_, err := ledger.Create(ctx, input)
		require.NoError(t, err)
	}

	all, err := ledger.List(ctx, models.TransactionFilter{})
	require.NoError(t, err)

	startOnly, err := ledger.List(ctx, models.TransactionFilter{Start: "2024-02-15"})
	require.NoError(t, err)
	assert.Nil(t, store.lastQuery.Range)
	assert.Equal(t, all, startOnly)

	endOnly, err := ledger.List(ctx, models.TransactionFilter{End: "not-a-date"})
	require.NoError(t, err, "a lone bound is ignored, not parsed")
	assert.Len(t, endOnly, 3)
}

func TestListOrdersByDateDescending(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()

	for _, date := range []string{"2024-02-01", "2024-03-01", "2024-01-01"} {
		input := expenseInput("Food", "1")
		input.Date = strPtr(date)
		_, err := ledger.Create(ctx, input)
		require.NoError(t, err)
	}

	txs, err := ledger.List(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 3)
	for i := 1; i < len(txs); i++ {
		assert.False(t, txs[i].Date.After(txs[i-1].Date), "transactions must be most recent first")
	}
}

func TestListBuildsDateRange(t *testing.T) {
	ledger, store, _ := newTestLedger(t)

	_, err := ledger.List(context.Background(), models.TransactionFilter{
		Division: "office",
		Category: "Travel",
		Start:    "2024-01-01",
		End:      "2024-01-31T23:59:59Z",
	})
	require.NoError(t, err)

	require.NotNil(t, store.lastQuery.Range)
	assert.Equal(t, "office", store.lastQuery.Division)
	assert.Equal(t, "Travel", store.lastQuery.Category)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), store.lastQuery.Range.Start)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC), store.lastQuery.Range.End)
}

func TestListRejectsBadRangeBounds(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	_, err := ledger.List(context.Background(), models.TransactionFilter{Start: "2024-01-01", End: "soon"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "end:")
}

func TestListEmptyIsNotNil(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	txs, err := ledger.List(context.Background(), models.TransactionFilter{Division: "office"})
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)
}

func TestListWrapsStoreError(t *testing.T) {
	ledger, store, _ := newTestLedger(t)
	store.listErr = errors.New("disk I/O error")

	_, err := ledger.List(context.Background(), models.TransactionFilter{})
	assert.ErrorIs(t, err, store.listErr)
}

func TestSummarizeByCategory(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.Create(ctx, expenseInput("A", "10"))
	require.NoError(t, err)
	_, err = ledger.Create(ctx, models.TransactionInput{
		Type: models.TypeIncome, Division: models.DivisionOffice, Category: strPtr("A"), Amount: amount("5"),
	})
	require.NoError(t, err)
	_, err = ledger.Create(ctx, expenseInput("B", "3"))
	require.NoError(t, err)
	_, err = ledger.Create(ctx, models.TransactionInput{
		Type: models.TypeExpense, Division: models.DivisionOffice, Amount: amount("7.25"),
	})
	require.NoError(t, err)

	totals, err := ledger.SummarizeByCategory(ctx)
	require.NoError(t, err)

	got := map[string]string{}
	for _, row := range totals {
		key := "<null>"
		if row.Category != nil {
			key = *row.Category
		}
		got[key] = row.Total.Decimal.String()
	}
	assert.Equal(t, map[string]string{"A": "15", "B": "3", "<null>": "7.25"}, got)
}

func TestSummarizeEmptyIsNotNil(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	totals, err := ledger.SummarizeByCategory(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, totals)
	assert.Empty(t, totals)
}

func TestTransferForcesType(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	tx, err := ledger.Transfer(context.Background(), models.TransferInput{
		FromAccount: strPtr("X"),
		ToAccount:   strPtr("Y"),
		Amount:      amount("50"),
		Division:    models.DivisionOffice,
	})
	require.NoError(t, err)

	assert.Equal(t, models.TypeTransfer, tx.Type)
	assert.Equal(t, "X", *tx.FromAccount)
	assert.Equal(t, "Y", *tx.ToAccount)
	assert.True(t, tx.Amount.Decimal.Equal(decimal.NewFromInt(50)))
	assert.Nil(t, tx.Category)
}

func TestTransferAllowsSameAccount(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	tx, err := ledger.Transfer(context.Background(), models.TransferInput{
		FromAccount: strPtr("Cash"),
		ToAccount:   strPtr("Cash"),
		Amount:      amount("5"),
		Division:    models.DivisionPersonal,
	})
	require.NoError(t, err)
	assert.Equal(t, *tx.FromAccount, *tx.ToAccount)
}

func TestTransferStillValidatesDivision(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	_, err := ledger.Transfer(context.Background(), models.TransferInput{
		FromAccount: strPtr("X"),
		ToAccount:   strPtr("Y"),
		Amount:      amount("50"),
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "division")
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amounts go over the wire as JSON numbers; input still accepts numeric strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// TransactionType classifies a ledger row
type TransactionType string

const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"
)

// Valid reports whether t is one of the known transaction types
func (t TransactionType) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeTransfer:
		return true
	}
	return false
}

// Division is the top-level partition of finances a transaction belongs to
type Division string

const (
	DivisionOffice   Division = "office"
	DivisionPersonal Division = "personal"
)

// Valid reports whether d is one of the known divisions
func (d Division) Valid() bool {
	return d == DivisionOffice || d == DivisionPersonal
}

type Transaction struct {
	ID          int64               `json:"id" db:"id"`
	Type        TransactionType     `json:"type" db:"type"`
	Division    Division            `json:"division" db:"division"`
	Category    *string             `json:"category" db:"category"`
	Amount      decimal.NullDecimal `json:"amount" db:"amount"`
	Description *string             `json:"description" db:"description"`
	Date        time.Time           `json:"date" db:"date"`
	FromAccount *string             `json:"fromAccount" db:"from_account"`
	ToAccount   *string             `json:"toAccount" db:"to_account"`
	CreatedAt   time.Time           `json:"createdAt" db:"created_at"`
}

// TransactionInput is the caller-supplied part of a new transaction.
// Date is kept as text so both RFC 3339 and plain calendar dates are accepted.
type TransactionInput struct {
	Type        TransactionType     `json:"type"`
	Division    Division            `json:"division"`
	Category    *string             `json:"category"`
	Amount      decimal.NullDecimal `json:"amount"`
	Description *string             `json:"description"`
	Date        *string             `json:"date"`
	FromAccount *string             `json:"fromAccount"`
	ToAccount   *string             `json:"toAccount"`
}

// TransactionPatch holds the fields an update may overwrite. A nil field
// leaves the stored value unchanged.
type TransactionPatch struct {
	Type        *TransactionType `json:"type"`
	Division    *Division        `json:"division"`
	Category    *string          `json:"category"`
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Date        *string          `json:"date"`
	FromAccount *string          `json:"fromAccount"`
	ToAccount   *string          `json:"toAccount"`
}

// TransferInput is the body accepted by the transfer endpoint
type TransferInput struct {
	FromAccount *string             `json:"fromAccount"`
	ToAccount   *string             `json:"toAccount"`
	Amount      decimal.NullDecimal `json:"amount"`
	Division    Division            `json:"division"`
	Category    *string             `json:"category"`
	Description *string             `json:"description"`
}

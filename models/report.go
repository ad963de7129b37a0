package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionFilter carries the raw list query parameters. Start and End
// only take effect when both are set.
type TransactionFilter struct {
	Division string `json:"division,omitempty"`
	Category string `json:"category,omitempty"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
}

// HasDateRange reports whether both range bounds were supplied
func (f TransactionFilter) HasDateRange() bool {
	return f.Start != "" && f.End != ""
}

// DateRange is a parsed, inclusive range on the transaction date
type DateRange struct {
	Start time.Time
	End   time.Time
}

// CategoryTotal is one group of the category summary. A nil Category is
// the group of uncategorised transactions.
type CategoryTotal struct {
	Category *string             `json:"category" db:"category"`
	Total    decimal.NullDecimal `json:"total" db:"total"`
}

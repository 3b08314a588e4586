package domain

import (
	"time"

	"github.com/google/uuid"
)

// Transaction represents a single ledger movement. Rows are immutable
// once created; BalanceAfter is a denormalized snapshot computed at
// insertion time, so insertion order (not Date) is the source of truth
// for the running balance.
type Transaction struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Date         time.Time `json:"date"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"` // always positive; Kind carries the sign
	Kind         string    `json:"kind"`
	Category     string    `json:"category"`
	BalanceAfter float64   `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

// Transaction kind constants
const (
	KindInflow  = "inflow"
	KindOutflow = "outflow"
)

// ValidKind reports whether k is a recognized transaction kind.
func ValidKind(k string) bool {
	return k == KindInflow || k == KindOutflow
}

// Signed returns the amount with the sign implied by the kind.
func (t *Transaction) Signed() float64 {
	if t.Kind == KindOutflow {
		return -t.Amount
	}
	return t.Amount
}

// CategoryTotal is an aggregate row for expense breakdowns.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

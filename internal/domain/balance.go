package domain

import (
	"time"

	"github.com/google/uuid"
)

// BalanceRecord is one row of the append-only balance log. The current
// balance for a user is the most recent row by UpdatedAt; rows are
// never updated in place.
type BalanceRecord struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Balance   float64   `json:"balance"` // may go negative; overdrafts are representable
	Currency  string    `json:"currency"`
	UpdatedAt time.Time `json:"updated_at"`
}

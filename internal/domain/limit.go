package domain

import (
	"time"

	"github.com/google/uuid"
)

// SpendingLimit is a monthly ceiling on outflows for one category.
// Hard limits block the offending transaction outright; soft limits
// only annotate the result with a warning. One row per (user, category).
type SpendingLimit struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Category     string    `json:"category"`
	MonthlyLimit float64   `json:"monthly_limit"`
	IsHardLimit  bool      `json:"is_hard_limit"`
	CreatedAt    time.Time `json:"created_at"`
}

// Preference is a free-form key/value profile fact (age, declared risk
// profile, main objective, ...). One row per (user, key).
type Preference struct {
	UserID    uuid.UUID `json:"user_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Well-known preference keys consumed by the advisor.
const (
	PrefAge         = "age"
	PrefRiskProfile = "risk_profile"
)

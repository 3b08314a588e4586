package dto

import (
	"time"

	"financeagent/internal/domain"
	"financeagent/internal/service"
)

// UserOutput represents user data in API responses
type UserOutput struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// DashboardOutput aggregates everything the dashboard view needs in
// one response.
type DashboardOutput struct {
	User               UserOutput                `json:"user"`
	Snapshot           *domain.HealthSnapshot    `json:"snapshot"`
	Goals              []domain.Goal             `json:"goals"`
	Alerts             []service.SpendingAlert   `json:"alerts"`
	RecentTransactions []TransactionOutput       `json:"recent_transactions"`
	Allocation         *service.AllocationResult `json:"allocation,omitempty"`
}

// TransactionOutput represents a ledger entry in API responses
type TransactionOutput struct {
	ID           string    `json:"id"`
	Date         time.Time `json:"date"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	Kind         string    `json:"kind"`
	Category     string    `json:"category"`
	BalanceAfter float64   `json:"balance_after"`
}

// NewTransactionOutput maps a domain transaction to its API shape
func NewTransactionOutput(t domain.Transaction) TransactionOutput {
	return TransactionOutput{
		ID:           t.ID.String(),
		Date:         t.Date,
		Description:  t.Description,
		Amount:       t.Amount,
		Kind:         t.Kind,
		Category:     t.Category,
		BalanceAfter: t.BalanceAfter,
	}
}

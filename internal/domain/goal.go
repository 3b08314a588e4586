package domain

import (
	"time"

	"github.com/google/uuid"
)

// Goal represents a savings goal with a simple lifecycle: created
// active, completed automatically once CurrentAmount reaches
// TargetAmount, cancelled only by explicit deletion. Terminal states
// reject further updates.
type Goal struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Name            string     `json:"name"`
	TargetAmount    float64    `json:"target_amount"`
	CurrentAmount   float64    `json:"current_amount"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	Priority        string     `json:"priority"`
	Status          string     `json:"status"`
	IsEmergencyFund bool       `json:"is_emergency_fund"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Goal priority constants
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Goal status constants
const (
	GoalActive    = "active"
	GoalCompleted = "completed"
	GoalCancelled = "cancelled"
)

// ValidPriority reports whether p is a recognized goal priority.
func ValidPriority(p string) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Progress returns completion as a percentage capped at 100.
func (g *Goal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	p := g.CurrentAmount / g.TargetAmount * 100
	if p > 100 {
		return 100
	}
	return p
}

package domain

// HealthSnapshot is a derived, point-in-time view of a user's financial
// health. It is recomputed on demand from the ledger and never stored
// as a source of truth; a short-TTL cache may hold it for dashboard
// reads only.
type HealthSnapshot struct {
	Balance         float64 `json:"balance"`
	MonthlyExpenses float64 `json:"monthly_expenses"`
	CurrentReserve  float64 `json:"current_reserve"`
	ReserveMonths   float64 `json:"reserve_months"`
	HasDebt         bool    `json:"has_debt"`
	SavingsRate     float64 `json:"savings_rate"` // negative means overspending
	Age             int     `json:"age"`
	RiskProfile     string  `json:"risk_profile,omitempty"`
	IsNewUser       bool    `json:"is_new_user"`
	HasRecentData   bool    `json:"has_recent_data"`
}

// Risk profile constants. Unknown profiles fall back to moderate.
const (
	ProfileConservative = "conservative"
	ProfileModerate     = "moderate"
	ProfileAggressive   = "aggressive"
)

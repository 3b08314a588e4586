package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"financeagent/configs"
	"financeagent/internal/domain"
	"financeagent/internal/infra"
	"financeagent/internal/utils"
)

// AdvisorService computes financial health and applies the advisory
// rules: viability guardrails and allocation recommendations.
type AdvisorService struct {
	txnRepo   domain.TransactionRepository
	balRepo   domain.BalanceRepository
	goalRepo  domain.GoalRepository
	prefRepo  domain.PreferenceRepository
	auditRepo domain.AuditRepository
	cache     *infra.SnapshotCache
	cfg       configs.AdvisorConfig
}

func NewAdvisorService(
	txnRepo domain.TransactionRepository,
	balRepo domain.BalanceRepository,
	goalRepo domain.GoalRepository,
	prefRepo domain.PreferenceRepository,
	auditRepo domain.AuditRepository,
	cache *infra.SnapshotCache,
	cfg configs.AdvisorConfig,
) *AdvisorService {
	return &AdvisorService{
		txnRepo:   txnRepo,
		balRepo:   balRepo,
		goalRepo:  goalRepo,
		prefRepo:  prefRepo,
		auditRepo: auditRepo,
		cache:     cache,
		cfg:       cfg,
	}
}

// ViabilityResult is the verdict of the spending guardrails. Every
// violated rule is listed, not just the first.
type ViabilityResult struct {
	Viable   bool                   `json:"viable"`
	Warnings []string               `json:"warnings"`
	Snapshot *domain.HealthSnapshot `json:"snapshot"`
}

// AllocationResult is a recommended portfolio split. Percentages sum
// to 100.
type AllocationResult struct {
	Profile    string             `json:"profile"`
	Overridden bool               `json:"overridden"`
	Reason     string             `json:"reason"`
	Allocation map[string]float64 `json:"allocation"`
}

// ComputeStatus builds a fresh health snapshot from the ledger.
// Safety-critical callers must use this; CachedStatus exists for
// display paths only.
func (s *AdvisorService) ComputeStatus(ctx context.Context, userID uuid.UUID) (*domain.HealthSnapshot, error) {
	now := time.Now().UTC()
	snap := &domain.HealthSnapshot{HasRecentData: true}

	bal, err := s.balRepo.Current(ctx, userID)
	if err != nil {
		if err != domain.ErrNoBalance {
			return nil, fmt.Errorf("failed to load balance: %w", err)
		}
	} else {
		snap.Balance = bal.Balance
	}

	// Monthly expenses: trailing 90 days of outflows divided by three.
	// Without spending history the configured fallback applies so the
	// reserve ratio stays meaningful.
	outflow90, err := s.txnRepo.SumByKindSince(ctx, userID, domain.KindOutflow, utils.DaysAgo(now, 90))
	if err != nil {
		return nil, fmt.Errorf("failed to sum outflows: %w", err)
	}
	if outflow90 > 0 {
		snap.MonthlyExpenses = outflow90 / 3
	} else {
		snap.MonthlyExpenses = s.cfg.MonthlyExpenseFallback
		snap.HasRecentData = false
	}

	reserve, err := s.goalRepo.FindEmergencyReserve(ctx, userID)
	if err != nil && err != domain.ErrGoalNotFound {
		return nil, fmt.Errorf("failed to find emergency reserve: %w", err)
	}
	if reserve != nil {
		snap.CurrentReserve = reserve.CurrentAmount
	} else {
		// Without a dedicated reserve goal the whole balance counts
		// as the emergency cushion.
		snap.CurrentReserve = snap.Balance
	}
	if snap.MonthlyExpenses > 0 {
		snap.ReserveMonths = snap.CurrentReserve / snap.MonthlyExpenses
	}

	debtSpend, err := s.txnRepo.SumCategorySince(ctx, userID, s.cfg.DebtCategory, utils.DaysAgo(now, 90))
	if err != nil {
		return nil, fmt.Errorf("failed to sum debt payments: %w", err)
	}
	snap.HasDebt = debtSpend > 0

	// Savings rate over the trailing 30 days. No income means no
	// meaningful rate, reported as zero.
	inflow30, err := s.txnRepo.SumByKindSince(ctx, userID, domain.KindInflow, utils.DaysAgo(now, 30))
	if err != nil {
		return nil, fmt.Errorf("failed to sum inflows: %w", err)
	}
	outflow30, err := s.txnRepo.SumByKindSince(ctx, userID, domain.KindOutflow, utils.DaysAgo(now, 30))
	if err != nil {
		return nil, fmt.Errorf("failed to sum outflows: %w", err)
	}
	if inflow30 > 0 {
		snap.SavingsRate = (inflow30 - outflow30) / inflow30
	}

	// A user is new until something is known about them. Ledger
	// activity is tracked separately through HasRecentData.
	prefs, err := s.prefRepo.GetAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	snap.IsNewUser = len(prefs) == 0

	snap.Age = s.cfg.DefaultAge
	for _, pref := range prefs {
		switch pref.Key {
		case domain.PrefAge:
			if age, err := strconv.Atoi(strings.TrimSpace(pref.Value)); err == nil && age > 0 {
				snap.Age = age
			}
		case domain.PrefRiskProfile:
			snap.RiskProfile = strings.ToLower(strings.TrimSpace(pref.Value))
		}
	}

	s.cache.Set(ctx, userID, snap)
	return snap, nil
}

// MinReserveMonths exposes the reserve threshold the guardrails use.
func (s *AdvisorService) MinReserveMonths() float64 {
	return s.cfg.MinReserveMonths
}

// CachedStatus serves display reads from the snapshot cache when it is
// warm, falling back to a full computation.
func (s *AdvisorService) CachedStatus(ctx context.Context, userID uuid.UUID) (*domain.HealthSnapshot, error) {
	if snap := s.cache.Get(ctx, userID); snap != nil {
		return snap, nil
	}
	return s.ComputeStatus(ctx, userID)
}

// EvaluateViability runs every guardrail against a fresh snapshot and
// reports all violations. The audit write is best effort.
func (s *AdvisorService) EvaluateViability(ctx context.Context, userID uuid.UUID, description string, amount float64) (*ViabilityResult, error) {
	snap, err := s.ComputeStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	var warnings []string

	if snap.ReserveMonths < s.cfg.MinReserveMonths {
		warnings = append(warnings, fmt.Sprintf(
			"Emergency reserve covers %.1f months of expenses, below the %.0f-month minimum. Prioritize the reserve before new spending.",
			snap.ReserveMonths, s.cfg.MinReserveMonths))
	}

	if snap.HasDebt {
		warnings = append(warnings,
			"Active debt payments detected in the last 90 days. Paying down debt should come before discretionary spending.")
	}

	if snap.SavingsRate < s.cfg.MinSavingsRate {
		warnings = append(warnings, fmt.Sprintf(
			"Savings rate over the last 30 days is %.0f%%, below the %.0f%% target.",
			snap.SavingsRate*100, s.cfg.MinSavingsRate*100))
	}

	result := &ViabilityResult{
		Viable:   len(warnings) == 0,
		Warnings: warnings,
		Snapshot: snap,
	}

	entry := &domain.AuditLogEntry{
		ID:              uuid.New(),
		UserID:          userID,
		Task:            fmt.Sprintf("viability check: %s (%.2f)", description, amount),
		DecisionProcess: fmt.Sprintf("viable=%t, warnings=%d", result.Viable, len(warnings)),
		ToolsUsed:       []string{"analyze_finances"},
		Timestamp:       time.Now().UTC(),
	}
	if err := s.auditRepo.Save(ctx, entry); err != nil {
		log.Printf("[WARN] failed to record viability audit: %v", err)
	}

	return result, nil
}

// Allocation tables per risk profile. Each sums to 100.
var allocationTables = map[string]map[string]float64{
	domain.ProfileConservative: {
		"Cash & Savings":     70,
		"Bonds/Fixed Income": 25,
		"Risk Assets":        5,
	},
	domain.ProfileModerate: {
		"Cash Reserve":            40,
		"Medium-Term Investments": 30,
		"Global Equity ETFs":      20,
		"Crypto/Alternatives":     10,
	},
	domain.ProfileAggressive: {
		"Operational Reserve":            20,
		"Local & International Equities": 40,
		"Crypto":                         20,
		"Venture/SME":                    20,
	},
}

// RecommendAllocation picks a risk profile (explicit preference first,
// then age bands) and forces conservative when the snapshot shows debt
// or a thin reserve.
func (s *AdvisorService) RecommendAllocation(ctx context.Context, userID uuid.UUID) (*AllocationResult, error) {
	snap, err := s.ComputeStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := snap.RiskProfile
	reason := "explicit risk profile preference"
	if _, ok := allocationTables[profile]; !ok {
		switch {
		case snap.Age < s.cfg.AggressiveAgeBelow:
			profile = domain.ProfileAggressive
		case snap.Age <= s.cfg.ModerateAgeUpTo:
			profile = domain.ProfileModerate
		default:
			profile = domain.ProfileConservative
		}
		reason = fmt.Sprintf("age band (%d)", snap.Age)
	}

	overridden := false
	if snap.HasDebt || snap.ReserveMonths < s.cfg.SafetyReserveMonths {
		if profile != domain.ProfileConservative {
			overridden = true
		}
		profile = domain.ProfileConservative
		switch {
		case snap.HasDebt:
			reason = "safety override: active debt"
		default:
			reason = fmt.Sprintf("safety override: reserve below %.0f months", s.cfg.SafetyReserveMonths)
		}
	}

	alloc := make(map[string]float64, len(allocationTables[profile]))
	for k, v := range allocationTables[profile] {
		alloc[k] = v
	}

	return &AllocationResult{
		Profile:    profile,
		Overridden: overridden,
		Reason:     reason,
		Allocation: alloc,
	}, nil
}

// ValidateRiskLimits checks crypto and global equity exposure against
// the ceilings for the given profile. Unknown profiles fall back to
// moderate ceilings.
func (s *AdvisorService) ValidateRiskLimits(profile string, cryptoShare, globalShare float64) []string {
	limits, ok := s.cfg.RiskLimits[profile]
	if !ok {
		limits = s.cfg.RiskLimits[domain.ProfileModerate]
	}

	var violations []string
	if cryptoShare > limits.Crypto {
		violations = append(violations, fmt.Sprintf(
			"crypto exposure %.0f%% exceeds the %.0f%% ceiling for a %s profile",
			cryptoShare*100, limits.Crypto*100, profile))
	}
	if globalShare > limits.Global {
		violations = append(violations, fmt.Sprintf(
			"global equity exposure %.0f%% exceeds the %.0f%% ceiling for a %s profile",
			globalShare*100, limits.Global*100, profile))
	}

	return violations
}

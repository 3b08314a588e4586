package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"financeagent/configs"
	"financeagent/internal/domain"
	"financeagent/internal/infra"
	"financeagent/internal/utils"
)

// LedgerService owns every financial write. Writes for a user are
// serialized through a per-user lock so the limit check, the balance
// read and the paired insert see a consistent ledger.
type LedgerService struct {
	txnRepo  domain.TransactionRepository
	balRepo  domain.BalanceRepository
	goalRepo domain.GoalRepository
	limRepo  domain.LimitRepository
	cache    *infra.SnapshotCache
	cfg      configs.AdvisorConfig

	userLocks sync.Map // uuid.UUID -> *sync.Mutex
}

func NewLedgerService(
	txnRepo domain.TransactionRepository,
	balRepo domain.BalanceRepository,
	goalRepo domain.GoalRepository,
	limRepo domain.LimitRepository,
	cache *infra.SnapshotCache,
	cfg configs.AdvisorConfig,
) *LedgerService {
	return &LedgerService{
		txnRepo:  txnRepo,
		balRepo:  balRepo,
		goalRepo: goalRepo,
		limRepo:  limRepo,
		cache:    cache,
		cfg:      cfg,
	}
}

func (s *LedgerService) lock(userID uuid.UUID) *sync.Mutex {
	mu, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// AddTransactionInput describes a new ledger entry.
type AddTransactionInput struct {
	Description string
	Amount      float64
	Kind        string
	Category    string
	Date        time.Time
}

// AddTransactionResult carries the stored transaction, the resulting
// balance and any soft-limit warnings.
type AddTransactionResult struct {
	Transaction *domain.Transaction `json:"transaction"`
	NewBalance  float64             `json:"new_balance"`
	Warnings    []string            `json:"warnings,omitempty"`
}

// AddTransaction records a transaction and its balance record
// atomically. Hard spending limits block the write up front; soft
// limits let it through with a warning. The balance may go negative.
func (s *LedgerService) AddTransaction(ctx context.Context, userID uuid.UUID, in AddTransactionInput) (*AddTransactionResult, error) {
	if !domain.ValidKind(in.Kind) {
		return nil, fmt.Errorf("%w: kind must be %q or %q", domain.ErrValidation, domain.KindInflow, domain.KindOutflow)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}

	category := strings.ToLower(strings.TrimSpace(in.Category))
	if category == "" {
		category = "general"
	}
	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	mu := s.lock(userID)
	mu.Lock()
	defer mu.Unlock()

	var warnings []string

	if in.Kind == domain.KindOutflow {
		limit, err := s.limRepo.GetByCategory(ctx, userID, category)
		if err != nil {
			return nil, err
		}
		if limit != nil {
			spent, err := s.txnRepo.SumCategorySince(ctx, userID, category, utils.MonthStart(date))
			if err != nil {
				return nil, err
			}
			if spent+in.Amount > limit.MonthlyLimit {
				if limit.IsHardLimit {
					return nil, fmt.Errorf("%w: %s limit is %.2f/month and this would bring the month to %.2f",
						domain.ErrLimitExceeded, category, limit.MonthlyLimit, spent+in.Amount)
				}
				warnings = append(warnings, fmt.Sprintf(
					"This exceeds your %s budget of %.2f/month (%.2f already spent).",
					category, limit.MonthlyLimit, spent))
			}
		}
	}

	balance := 0.0
	currency := s.cfg.Currency
	if cur, err := s.balRepo.Current(ctx, userID); err == nil {
		balance = cur.Balance
		currency = cur.Currency
	} else if err != domain.ErrNoBalance {
		return nil, err
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Date:        date,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Kind:        in.Kind,
		Category:    category,
		CreatedAt:   now,
	}
	txn.BalanceAfter = balance + txn.Signed()

	bal := &domain.BalanceRecord{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   txn.BalanceAfter,
		Currency:  currency,
		UpdatedAt: now,
	}

	if err := s.txnRepo.Append(ctx, txn, bal); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, userID)

	return &AddTransactionResult{
		Transaction: txn,
		NewBalance:  txn.BalanceAfter,
		Warnings:    warnings,
	}, nil
}

// SetBalance records an explicit balance, starting a new baseline.
func (s *LedgerService) SetBalance(ctx context.Context, userID uuid.UUID, balance float64, currency string) (*domain.BalanceRecord, error) {
	if currency == "" {
		currency = s.cfg.Currency
	}

	mu := s.lock(userID)
	mu.Lock()
	defer mu.Unlock()

	rec := &domain.BalanceRecord{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   balance,
		Currency:  currency,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.balRepo.Append(ctx, rec); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, userID)
	return rec, nil
}

// CreateGoal registers a new active goal.
func (s *LedgerService) CreateGoal(ctx context.Context, userID uuid.UUID, name string, target float64, deadline *time.Time, priority string) (*domain.Goal, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: goal name is required", domain.ErrValidation)
	}
	if target <= 0 {
		return nil, fmt.Errorf("%w: target amount must be positive", domain.ErrValidation)
	}
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, fmt.Errorf("%w: priority must be high, medium or low", domain.ErrValidation)
	}

	lower := strings.ToLower(name)
	goal := &domain.Goal{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         strings.TrimSpace(name),
		TargetAmount: target,
		Deadline:     deadline,
		Priority:     priority,
		Status:       domain.GoalActive,
		IsEmergencyFund: strings.Contains(lower, "emergency") ||
			strings.Contains(lower, "reserve") ||
			strings.Contains(lower, "reserva"),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.goalRepo.Create(ctx, goal); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, userID)
	return goal, nil
}

// GoalUpdate lists the optional changes for UpdateGoal. Nil fields are
// left untouched.
type GoalUpdate struct {
	AddAmount    *float64
	SetAmount    *float64
	TargetAmount *float64
	Deadline     *time.Time
	Priority     *string
}

// UpdateGoal applies changes to an active goal matched by name. A goal
// whose saved amount reaches its target is completed automatically.
func (s *LedgerService) UpdateGoal(ctx context.Context, userID uuid.UUID, name string, upd GoalUpdate) (*domain.Goal, error) {
	mu := s.lock(userID)
	mu.Lock()
	defer mu.Unlock()

	goal, err := s.goalRepo.GetActiveByName(ctx, userID, name)
	if err != nil {
		return nil, err
	}

	if upd.AddAmount != nil {
		if *upd.AddAmount <= 0 {
			return nil, fmt.Errorf("%w: amount to add must be positive", domain.ErrValidation)
		}
		goal.CurrentAmount += *upd.AddAmount
	}
	if upd.SetAmount != nil {
		if *upd.SetAmount < 0 {
			return nil, fmt.Errorf("%w: saved amount cannot be negative", domain.ErrValidation)
		}
		goal.CurrentAmount = *upd.SetAmount
	}
	if upd.TargetAmount != nil {
		if *upd.TargetAmount <= 0 {
			return nil, fmt.Errorf("%w: target amount must be positive", domain.ErrValidation)
		}
		goal.TargetAmount = *upd.TargetAmount
	}
	if upd.Deadline != nil {
		goal.Deadline = upd.Deadline
	}
	if upd.Priority != nil {
		if !domain.ValidPriority(*upd.Priority) {
			return nil, fmt.Errorf("%w: priority must be high, medium or low", domain.ErrValidation)
		}
		goal.Priority = *upd.Priority
	}

	if goal.CurrentAmount >= goal.TargetAmount {
		goal.Status = domain.GoalCompleted
	}

	if err := s.goalRepo.Update(ctx, goal); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, userID)
	return goal, nil
}

// CancelGoal cancels an active goal matched by name.
func (s *LedgerService) CancelGoal(ctx context.Context, userID uuid.UUID, name string) (*domain.Goal, error) {
	goal, err := s.goalRepo.GetActiveByName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if err := s.goalRepo.Cancel(ctx, goal.ID); err != nil {
		return nil, err
	}
	goal.Status = domain.GoalCancelled

	s.cache.Invalidate(ctx, userID)
	return goal, nil
}

func (s *LedgerService) ListGoals(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]domain.Goal, error) {
	if activeOnly {
		return s.goalRepo.ListActive(ctx, userID)
	}
	return s.goalRepo.List(ctx, userID)
}

// SetSpendingLimit creates or replaces a category budget.
func (s *LedgerService) SetSpendingLimit(ctx context.Context, userID uuid.UUID, category string, monthly float64, hard bool) (*domain.SpendingLimit, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", domain.ErrValidation)
	}
	if monthly <= 0 {
		return nil, fmt.Errorf("%w: monthly limit must be positive", domain.ErrValidation)
	}

	limit := &domain.SpendingLimit{
		ID:           uuid.New(),
		UserID:       userID,
		Category:     category,
		MonthlyLimit: monthly,
		IsHardLimit:  hard,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.limRepo.Upsert(ctx, limit); err != nil {
		return nil, err
	}

	return limit, nil
}

// SpendingAlert reports month-to-date spend against a category budget.
type SpendingAlert struct {
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
	Spent    float64 `json:"spent"`
	Ratio    float64 `json:"ratio"`
	Level    string  `json:"level"`
	IsHard   bool    `json:"is_hard"`
}

// SpendingAlerts checks every configured limit for the current month.
// Budgets at 80% or more of the limit get an early warning, budgets at
// or over the limit are flagged exceeded.
func (s *LedgerService) SpendingAlerts(ctx context.Context, userID uuid.UUID) ([]SpendingAlert, error) {
	limits, err := s.limRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	since := utils.MonthStart(time.Now().UTC())
	var alerts []SpendingAlert
	for _, l := range limits {
		spent, err := s.txnRepo.SumCategorySince(ctx, userID, l.Category, since)
		if err != nil {
			return nil, err
		}

		ratio := spent / l.MonthlyLimit
		level := ""
		switch {
		case ratio >= 1:
			level = "exceeded"
		case ratio >= 0.8:
			level = "warning"
		default:
			continue
		}

		alerts = append(alerts, SpendingAlert{
			Category: l.Category,
			Limit:    l.MonthlyLimit,
			Spent:    spent,
			Ratio:    ratio,
			Level:    level,
			IsHard:   l.IsHardLimit,
		})
	}

	return alerts, nil
}

func (s *LedgerService) ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.txnRepo.ListRecent(ctx, userID, limit)
}

func (s *LedgerService) ExpenseByCategory(ctx context.Context, userID uuid.UUID, days int) ([]domain.CategoryTotal, error) {
	if days <= 0 {
		days = 30
	}
	return s.txnRepo.ExpenseByCategory(ctx, userID, utils.DaysAgo(time.Now().UTC(), days))
}

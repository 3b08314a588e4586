package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"financeagent/internal/domain"
)

// In-memory repositories for service tests.

type fakeTxnRepo struct {
	txns     []domain.Transaction
	balances *fakeBalanceRepo
	appends  int
}

func (f *fakeTxnRepo) Append(ctx context.Context, txn *domain.Transaction, bal *domain.BalanceRecord) error {
	f.txns = append(f.txns, *txn)
	f.balances.records = append(f.balances.records, *bal)
	f.appends++
	return nil
}

func (f *fakeTxnRepo) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for i := len(f.txns) - 1; i >= 0 && len(out) < limit; i-- {
		if f.txns[i].UserID == userID {
			out = append(out, f.txns[i])
		}
	}
	return out, nil
}

func (f *fakeTxnRepo) SumByKindSince(ctx context.Context, userID uuid.UUID, kind string, since time.Time) (float64, error) {
	total := 0.0
	for _, t := range f.txns {
		if t.UserID == userID && t.Kind == kind && !t.Date.Before(since) {
			total += t.Amount
		}
	}
	return total, nil
}

func (f *fakeTxnRepo) SumCategorySince(ctx context.Context, userID uuid.UUID, category string, since time.Time) (float64, error) {
	total := 0.0
	for _, t := range f.txns {
		if t.UserID == userID && t.Kind == domain.KindOutflow &&
			strings.EqualFold(t.Category, category) && !t.Date.Before(since) {
			total += t.Amount
		}
	}
	return total, nil
}

func (f *fakeTxnRepo) ExpenseByCategory(ctx context.Context, userID uuid.UUID, since time.Time) ([]domain.CategoryTotal, error) {
	sums := map[string]float64{}
	for _, t := range f.txns {
		if t.UserID == userID && t.Kind == domain.KindOutflow && !t.Date.Before(since) {
			sums[t.Category] += t.Amount
		}
	}
	var out []domain.CategoryTotal
	for c, v := range sums {
		out = append(out, domain.CategoryTotal{Category: c, Total: v})
	}
	return out, nil
}

type fakeBalanceRepo struct {
	records []domain.BalanceRecord
}

func (f *fakeBalanceRepo) Current(ctx context.Context, userID uuid.UUID) (*domain.BalanceRecord, error) {
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].UserID == userID {
			rec := f.records[i]
			return &rec, nil
		}
	}
	return nil, domain.ErrNoBalance
}

func (f *fakeBalanceRepo) Append(ctx context.Context, rec *domain.BalanceRecord) error {
	f.records = append(f.records, *rec)
	return nil
}

type fakeGoalRepo struct {
	goals []domain.Goal
}

func (f *fakeGoalRepo) Create(ctx context.Context, goal *domain.Goal) error {
	f.goals = append(f.goals, *goal)
	return nil
}

func (f *fakeGoalRepo) GetActiveByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Goal, error) {
	for _, g := range f.goals {
		if g.UserID == userID && g.Status == domain.GoalActive && strings.EqualFold(g.Name, name) {
			goal := g
			return &goal, nil
		}
	}
	return nil, domain.ErrGoalNotFound
}

func (f *fakeGoalRepo) FindEmergencyReserve(ctx context.Context, userID uuid.UUID) (*domain.Goal, error) {
	for _, g := range f.goals {
		if g.UserID != userID || g.Status != domain.GoalActive {
			continue
		}
		lower := strings.ToLower(g.Name)
		if g.IsEmergencyFund || strings.Contains(lower, "emergency") || strings.Contains(lower, "reserve") {
			goal := g
			return &goal, nil
		}
	}
	return nil, domain.ErrGoalNotFound
}

func (f *fakeGoalRepo) ListActive(ctx context.Context, userID uuid.UUID) ([]domain.Goal, error) {
	var out []domain.Goal
	for _, g := range f.goals {
		if g.UserID == userID && g.Status == domain.GoalActive {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGoalRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.Goal, error) {
	var out []domain.Goal
	for _, g := range f.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGoalRepo) Update(ctx context.Context, goal *domain.Goal) error {
	for i, g := range f.goals {
		if g.ID == goal.ID {
			f.goals[i] = *goal
			return nil
		}
	}
	return domain.ErrGoalNotFound
}

func (f *fakeGoalRepo) Cancel(ctx context.Context, goalID uuid.UUID) error {
	for i, g := range f.goals {
		if g.ID == goalID && g.Status == domain.GoalActive {
			f.goals[i].Status = domain.GoalCancelled
			return nil
		}
	}
	return domain.ErrGoalNotFound
}

type fakeLimitRepo struct {
	limits []domain.SpendingLimit
}

func (f *fakeLimitRepo) Upsert(ctx context.Context, limit *domain.SpendingLimit) error {
	for i, l := range f.limits {
		if l.UserID == limit.UserID && l.Category == limit.Category {
			f.limits[i] = *limit
			return nil
		}
	}
	f.limits = append(f.limits, *limit)
	return nil
}

func (f *fakeLimitRepo) GetByCategory(ctx context.Context, userID uuid.UUID, category string) (*domain.SpendingLimit, error) {
	for _, l := range f.limits {
		if l.UserID == userID && strings.EqualFold(l.Category, category) {
			limit := l
			return &limit, nil
		}
	}
	return nil, nil
}

func (f *fakeLimitRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.SpendingLimit, error) {
	var out []domain.SpendingLimit
	for _, l := range f.limits {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakePrefRepo struct {
	prefs []domain.Preference
}

func (f *fakePrefRepo) Set(ctx context.Context, pref *domain.Preference) error {
	for i, p := range f.prefs {
		if p.UserID == pref.UserID && p.Key == pref.Key {
			f.prefs[i] = *pref
			return nil
		}
	}
	f.prefs = append(f.prefs, *pref)
	return nil
}

func (f *fakePrefRepo) Get(ctx context.Context, userID uuid.UUID, key string) (*domain.Preference, error) {
	for _, p := range f.prefs {
		if p.UserID == userID && p.Key == key {
			pref := p
			return &pref, nil
		}
	}
	return nil, nil
}

func (f *fakePrefRepo) GetAll(ctx context.Context, userID uuid.UUID) ([]domain.Preference, error) {
	var out []domain.Preference
	for _, p := range f.prefs {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	entries []domain.AuditLogEntry
}

func (f *fakeAuditRepo) Save(ctx context.Context, entry *domain.AuditLogEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

type fakeUserRepo struct {
	users []domain.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByName(ctx context.Context, name string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Name == name {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	return append([]domain.User(nil), f.users...), nil
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financeagent/internal/domain"
	"financeagent/internal/infra"
)

type ledgerFixture struct {
	svc    *LedgerService
	txns   *fakeTxnRepo
	bals   *fakeBalanceRepo
	goals  *fakeGoalRepo
	limits *fakeLimitRepo
}

func newLedgerFixture() *ledgerFixture {
	bals := &fakeBalanceRepo{}
	f := &ledgerFixture{
		txns:   &fakeTxnRepo{balances: bals},
		bals:   bals,
		goals:  &fakeGoalRepo{},
		limits: &fakeLimitRepo{},
	}
	f.svc = NewLedgerService(f.txns, f.bals, f.goals, f.limits,
		infra.NewSnapshotCache(nil, 0), testAdvisorConfig())
	return f
}

func TestAddTransaction_AppendsPair(t *testing.T) {
	f := newLedgerFixture()
	userID := uuid.New()

	_, err := f.svc.SetBalance(context.Background(), userID, 1000, "")
	require.NoError(t, err)

	res, err := f.svc.AddTransaction(context.Background(), userID, AddTransactionInput{
		Description: "groceries",
		Amount:      150,
		Kind:        domain.KindOutflow,
		Category:    "Food",
	})
	require.NoError(t, err)

	assert.Equal(t, 850.0, res.NewBalance)
	assert.Equal(t, 850.0, res.Transaction.BalanceAfter)
	assert.Equal(t, "food", res.Transaction.Category)
	assert.Equal(t, 1, f.txns.appends)

	// The balance record written alongside must agree with the
	// transaction's balance-after.
	cur, err := f.bals.Current(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 850.0, cur.Balance)
}

func TestAddTransaction_NoBalanceFloor(t *testing.T) {
	f := newLedgerFixture()
	userID := uuid.New()

	res, err := f.svc.AddTransaction(context.Background(), userID, AddTransactionInput{
		Description: "rent",
		Amount:      2000,
		Kind:        domain.KindOutflow,
	})
	require.NoError(t, err)

	assert.Equal(t, -2000.0, res.NewBalance)
}

func TestAddTransaction_Validation(t *testing.T) {
	f := newLedgerFixture()
	userID := uuid.New()

	_, err := f.svc.AddTransaction(context.Background(), userID, AddTransactionInput{
		Description: "bad kind", Amount: 10, Kind: "transfer",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.AddTransaction(context.Background(), userID, AddTransactionInput{
		Description: "bad amount", Amount: -5, Kind: domain.KindOutflow,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.AddTransaction(context.Background(), userID, AddTransactionInput{
		Amount: 10, Kind: domain.KindOutflow,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Zero(t, f.txns.appends)
}

func TestAddTransaction_HardLimitBlocks(t *testing.T) {
	f := newLedgerFixture()
	userID := uuid.New()

	_, err := f.svc.SetSpendingLimit(context.Background(), userID, "dining", 200, true)
	require.NoError(t, err)

	_, err = f.svc.AddTransaction(context.Background(), userID, AddTransactionInput{
		Description: "dinner",
		Amount:      150,
		Kind:        domain.KindOutflow,
		Category:    "dining",
	})
	require.NoError(t, err)

	// 150 + 100 > 200: blocked before any write.
	_, err = f.svc.AddTransaction(context.Background(), userID, AddTransactionInput{
		Description: "another dinner",
		Amount:      100,
		Kind:        domain.KindOutflow,
		Category:    "dining",
	})
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)
	assert.Contains(t, err.Error(), "200.00")
	assert.Contains(t, err.Error(), "250.00")
	assert.Equal(t, 1, f.txns.appends)
	assert.Len(t, f.bals.records, 1)
}

func TestAddTransaction_SoftLimitWarns(t *testing.T) {
	f := newLedgerFixture()
	userID := uuid.New()

	_, err := f.svc.SetSpendingLimit(context.Background(), userID, "dining", 100, false)
	require.NoError(t, err)

	res, err := f.svc.AddTransaction(context.Background(), userID, AddTransactionInput{
		Description: "big dinner",
		Amount:      150,
		Kind:        domain.KindOutflow,
		Category:    "dining",
	})
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "dining")
	assert.Equal(t, 1, f.txns.appends)
}

func TestAddTransaction_InflowSkipsLimitCheck(t *testing.T) {
	f := newLedgerFixture()
	userID := uuid.New()

	_, err := f.svc.SetSpendingLimit(context.Background(), userID, "salary", 1, true)
	require.NoError(t, err)

	res, err := f.svc.AddTransaction(context.Background(), userID, AddTransactionInput{
		Description: "payday",
		Amount:      5000,
		Kind:        domain.KindInflow,
		Category:    "salary",
	})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
}

func TestCreateGoal_FlagsEmergencyFund(t *testing.T) {
	f := newLedgerFixture()
	userID := uuid.New()

	goal, err := f.svc.CreateGoal(context.Background(), userID, "Emergency Fund", 10000, nil, "")
	require.NoError(t, err)

	assert.True(t, goal.IsEmergencyFund)
	assert.Equal(t, domain.PriorityMedium, goal.Priority)
	assert.Equal(t, domain.GoalActive, goal.Status)

	other, err := f.svc.CreateGoal(context.Background(), userID, "New Car", 20000, nil, domain.PriorityLow)
	require.NoError(t, err)
	assert.False(t, other.IsEmergencyFund)
}

func TestUpdateGoal_AutoCompletes(t *testing.T) {
	f := newLedgerFixture()
	userID := uuid.New()

	_, err := f.svc.CreateGoal(context.Background(), userID, "Vacation", 1000, nil, "")
	require.NoError(t, err)

	add := 400.0
	goal, err := f.svc.UpdateGoal(context.Background(), userID, "vacation", GoalUpdate{AddAmount: &add})
	require.NoError(t, err)
	assert.Equal(t, domain.GoalActive, goal.Status)
	assert.InDelta(t, 40.0, goal.Progress(), 0.001)

	add = 600.0
	goal, err = f.svc.UpdateGoal(context.Background(), userID, "Vacation", GoalUpdate{AddAmount: &add})
	require.NoError(t, err)
	assert.Equal(t, domain.GoalCompleted, goal.Status)
}

func TestUpdateGoal_RejectsNonPositiveAmounts(t *testing.T) {
	f := newLedgerFixture()
	userID := uuid.New()

	_, err := f.svc.CreateGoal(context.Background(), userID, "Vacation", 1000, nil, "")
	require.NoError(t, err)

	add := 100.0
	_, err = f.svc.UpdateGoal(context.Background(), userID, "vacation", GoalUpdate{AddAmount: &add})
	require.NoError(t, err)

	// Progress only moves forward: negative deltas and negative
	// overwrites are rejected before anything is stored.
	neg := -50.0
	_, err = f.svc.UpdateGoal(context.Background(), userID, "vacation", GoalUpdate{AddAmount: &neg})
	assert.ErrorIs(t, err, domain.ErrValidation)

	zero := 0.0
	_, err = f.svc.UpdateGoal(context.Background(), userID, "vacation", GoalUpdate{AddAmount: &zero})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.UpdateGoal(context.Background(), userID, "vacation", GoalUpdate{SetAmount: &neg})
	assert.ErrorIs(t, err, domain.ErrValidation)

	goal, err := f.svc.UpdateGoal(context.Background(), userID, "vacation", GoalUpdate{SetAmount: &zero})
	require.NoError(t, err)
	assert.Equal(t, 0.0, goal.CurrentAmount)
}

func TestUpdateGoal_CompletedGoalRejectsFurtherUpdates(t *testing.T) {
	f := newLedgerFixture()
	userID := uuid.New()

	_, err := f.svc.CreateGoal(context.Background(), userID, "Vacation", 1000, nil, "")
	require.NoError(t, err)

	add := 1000.0
	goal, err := f.svc.UpdateGoal(context.Background(), userID, "vacation", GoalUpdate{AddAmount: &add})
	require.NoError(t, err)
	require.Equal(t, domain.GoalCompleted, goal.Status)

	add = 50.0
	_, err = f.svc.UpdateGoal(context.Background(), userID, "vacation", GoalUpdate{AddAmount: &add})
	assert.ErrorIs(t, err, domain.ErrGoalNotFound)
}

func TestUpdateGoal_UnknownName(t *testing.T) {
	f := newLedgerFixture()

	add := 10.0
	_, err := f.svc.UpdateGoal(context.Background(), uuid.New(), "nope", GoalUpdate{AddAmount: &add})
	assert.ErrorIs(t, err, domain.ErrGoalNotFound)
}

func TestCancelGoal(t *testing.T) {
	f := newLedgerFixture()
	userID := uuid.New()

	_, err := f.svc.CreateGoal(context.Background(), userID, "Old Plan", 500, nil, "")
	require.NoError(t, err)

	goal, err := f.svc.CancelGoal(context.Background(), userID, "old plan")
	require.NoError(t, err)
	assert.Equal(t, domain.GoalCancelled, goal.Status)

	// A cancelled goal no longer matches by name.
	_, err = f.svc.CancelGoal(context.Background(), userID, "old plan")
	assert.ErrorIs(t, err, domain.ErrGoalNotFound)
}

func TestSpendingAlerts_Thresholds(t *testing.T) {
	f := newLedgerFixture()
	userID := uuid.New()
	now := time.Now().UTC()

	_, err := f.svc.SetSpendingLimit(context.Background(), userID, "dining", 100, false)
	require.NoError(t, err)
	_, err = f.svc.SetSpendingLimit(context.Background(), userID, "transport", 100, false)
	require.NoError(t, err)
	_, err = f.svc.SetSpendingLimit(context.Background(), userID, "fun", 100, true)
	require.NoError(t, err)

	f.txns.txns = append(f.txns.txns,
		domain.Transaction{UserID: userID, Date: now, Amount: 85, Kind: domain.KindOutflow, Category: "dining"},
		domain.Transaction{UserID: userID, Date: now, Amount: 20, Kind: domain.KindOutflow, Category: "transport"},
		domain.Transaction{UserID: userID, Date: now, Amount: 120, Kind: domain.KindOutflow, Category: "fun"},
	)

	alerts, err := f.svc.SpendingAlerts(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	byCategory := map[string]SpendingAlert{}
	for _, a := range alerts {
		byCategory[a.Category] = a
	}
	assert.Equal(t, "warning", byCategory["dining"].Level)
	assert.Equal(t, "exceeded", byCategory["fun"].Level)
	assert.True(t, byCategory["fun"].IsHard)
}

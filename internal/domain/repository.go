package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByName(ctx context.Context, name string) (*User, error)
	List(ctx context.Context) ([]User, error)
}

// TransactionRepository persists the append-only ledger. Append writes
// the transaction and its paired balance record in one database
// transaction so the pair commits or rolls back together.
type TransactionRepository interface {
	Append(ctx context.Context, txn *Transaction, bal *BalanceRecord) error
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]Transaction, error)
	SumByKindSince(ctx context.Context, userID uuid.UUID, kind string, since time.Time) (float64, error)
	SumCategorySince(ctx context.Context, userID uuid.UUID, category string, since time.Time) (float64, error)
	ExpenseByCategory(ctx context.Context, userID uuid.UUID, since time.Time) ([]CategoryTotal, error)
}

// BalanceRepository reads and appends balance records. Current returns
// ErrNoBalance when the user has no record yet.
type BalanceRepository interface {
	Current(ctx context.Context, userID uuid.UUID) (*BalanceRecord, error)
	Append(ctx context.Context, rec *BalanceRecord) error
}

type GoalRepository interface {
	Create(ctx context.Context, goal *Goal) error
	GetActiveByName(ctx context.Context, userID uuid.UUID, name string) (*Goal, error)
	FindEmergencyReserve(ctx context.Context, userID uuid.UUID) (*Goal, error)
	ListActive(ctx context.Context, userID uuid.UUID) ([]Goal, error)
	List(ctx context.Context, userID uuid.UUID) ([]Goal, error)
	Update(ctx context.Context, goal *Goal) error
	Cancel(ctx context.Context, goalID uuid.UUID) error
}

type LimitRepository interface {
	Upsert(ctx context.Context, limit *SpendingLimit) error
	GetByCategory(ctx context.Context, userID uuid.UUID, category string) (*SpendingLimit, error)
	List(ctx context.Context, userID uuid.UUID) ([]SpendingLimit, error)
}

type PreferenceRepository interface {
	Set(ctx context.Context, pref *Preference) error
	Get(ctx context.Context, userID uuid.UUID, key string) (*Preference, error)
	GetAll(ctx context.Context, userID uuid.UUID) ([]Preference, error)
}

type PortfolioRepository interface {
	Add(ctx context.Context, holding *PortfolioHolding) error
	List(ctx context.Context, userID uuid.UUID) ([]PortfolioHolding, error)
}

type ChatRepository interface {
	SaveMessage(ctx context.Context, msg *ConversationMessage) error
	History(ctx context.Context, userID uuid.UUID, sessionID string, limit int) ([]ConversationMessage, error)
	HistoryForUser(ctx context.Context, userID uuid.UUID, limit int) ([]ConversationMessage, error)
}

type AuditRepository interface {
	Save(ctx context.Context, entry *AuditLogEntry) error
}

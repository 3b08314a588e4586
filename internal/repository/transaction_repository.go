package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"financeagent/internal/domain"
)

// TransactionRepositoryImpl implements the TransactionRepository interface
type TransactionRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db *pgxpool.Pool) domain.TransactionRepository {
	return &TransactionRepositoryImpl{db: db}
}

// Append writes the transaction and its balance record in one database
// transaction so both commit or neither does.
func (r *TransactionRepositoryImpl) Append(ctx context.Context, txn *domain.Transaction, bal *domain.BalanceRecord) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	txnQuery := `
		INSERT INTO transactions (
			id, user_id, date, description, amount, kind, category,
			balance_after, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = tx.Exec(ctx, txnQuery,
		txn.ID,
		txn.UserID,
		txn.Date,
		txn.Description,
		txn.Amount,
		txn.Kind,
		txn.Category,
		txn.BalanceAfter,
		txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	balQuery := `
		INSERT INTO balance_records (id, user_id, balance, currency, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = tx.Exec(ctx, balQuery,
		bal.ID,
		bal.UserID,
		bal.Balance,
		bal.Currency,
		bal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert balance record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *TransactionRepositoryImpl) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT id, user_id, date, description, amount, kind, category,
		       balance_after, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Date, &t.Description, &t.Amount,
			&t.Kind, &t.Category, &t.BalanceAfter, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, t)
	}

	return txns, rows.Err()
}

func (r *TransactionRepositoryImpl) SumByKindSince(ctx context.Context, userID uuid.UUID, kind string, since time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND kind = $2 AND date >= $3
	`

	var total float64
	if err := r.db.QueryRow(ctx, query, userID, kind, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum transactions: %w", err)
	}

	return total, nil
}

func (r *TransactionRepositoryImpl) SumCategorySince(ctx context.Context, userID uuid.UUID, category string, since time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND kind = 'outflow' AND LOWER(category) = LOWER($2) AND date >= $3
	`

	var total float64
	if err := r.db.QueryRow(ctx, query, userID, category, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum category spend: %w", err)
	}

	return total, nil
}

func (r *TransactionRepositoryImpl) ExpenseByCategory(ctx context.Context, userID uuid.UUID, since time.Time) ([]domain.CategoryTotal, error) {
	query := `
		SELECT category, SUM(amount) AS total
		FROM transactions
		WHERE user_id = $1 AND kind = 'outflow' AND date >= $2
		GROUP BY category
		ORDER BY total DESC
	`

	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate expenses: %w", err)
	}
	defer rows.Close()

	var totals []domain.CategoryTotal
	for rows.Next() {
		var ct domain.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals = append(totals, ct)
	}

	return totals, rows.Err()
}

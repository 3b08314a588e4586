package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"financeagent/internal/domain"
)

// BalanceRepositoryImpl implements the BalanceRepository interface
type BalanceRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewBalanceRepository creates a new BalanceRepository
func NewBalanceRepository(db *pgxpool.Pool) domain.BalanceRepository {
	return &BalanceRepositoryImpl{db: db}
}

// Current returns the latest balance record for the user.
func (r *BalanceRepositoryImpl) Current(ctx context.Context, userID uuid.UUID) (*domain.BalanceRecord, error) {
	query := `
		SELECT id, user_id, balance, currency, updated_at
		FROM balance_records
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var rec domain.BalanceRecord
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&rec.ID, &rec.UserID, &rec.Balance, &rec.Currency, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoBalance
		}
		return nil, fmt.Errorf("failed to get current balance: %w", err)
	}

	return &rec, nil
}

func (r *BalanceRepositoryImpl) Append(ctx context.Context, rec *domain.BalanceRecord) error {
	query := `
		INSERT INTO balance_records (id, user_id, balance, currency, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		rec.ID, rec.UserID, rec.Balance, rec.Currency, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append balance record: %w", err)
	}

	return nil
}

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

// LimitRepositoryImpl implements the LimitRepository interface
type LimitRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewLimitRepository creates a new LimitRepository
func NewLimitRepository(db *pgxpool.Pool) domain.LimitRepository {
	return &LimitRepositoryImpl{db: db}
}

// Upsert replaces the limit for the (user, category) pair.
func (r *LimitRepositoryImpl) Upsert(ctx context.Context, limit *domain.SpendingLimit) error {
	query := `
		INSERT INTO spending_limits (id, user_id, category, monthly_limit, is_hard_limit, created_at)
		VALUES ($1, $2, LOWER($3), $4, $5, $6)
		ON CONFLICT (user_id, category)
		DO UPDATE SET monthly_limit = EXCLUDED.monthly_limit,
		              is_hard_limit = EXCLUDED.is_hard_limit
	`

	_, err := r.db.Exec(ctx, query,
		limit.ID, limit.UserID, limit.Category, limit.MonthlyLimit,
		limit.IsHardLimit, limit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert spending limit: %w", err)
	}

	return nil
}

func (r *LimitRepositoryImpl) GetByCategory(ctx context.Context, userID uuid.UUID, category string) (*domain.SpendingLimit, error) {
	query := `
		SELECT id, user_id, category, monthly_limit, is_hard_limit, created_at
		FROM spending_limits
		WHERE user_id = $1 AND category = LOWER($2)
	`

	var l domain.SpendingLimit
	err := r.db.QueryRow(ctx, query, userID, category).Scan(
		&l.ID, &l.UserID, &l.Category, &l.MonthlyLimit, &l.IsHardLimit, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get spending limit: %w", err)
	}

	return &l, nil
}

func (r *LimitRepositoryImpl) List(ctx context.Context, userID uuid.UUID) ([]domain.SpendingLimit, error) {
	query := `
		SELECT id, user_id, category, monthly_limit, is_hard_limit, created_at
		FROM spending_limits
		WHERE user_id = $1
		ORDER BY category
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list spending limits: %w", err)
	}
	defer rows.Close()

	var limits []domain.SpendingLimit
	for rows.Next() {
		var l domain.SpendingLimit
		if err := rows.Scan(&l.ID, &l.UserID, &l.Category, &l.MonthlyLimit, &l.IsHardLimit, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan spending limit: %w", err)
		}
		limits = append(limits, l)
	}

	return limits, rows.Err()
}

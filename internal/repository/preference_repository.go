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

// PreferenceRepositoryImpl implements the PreferenceRepository interface
type PreferenceRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewPreferenceRepository creates a new PreferenceRepository
func NewPreferenceRepository(db *pgxpool.Pool) domain.PreferenceRepository {
	return &PreferenceRepositoryImpl{db: db}
}

func (r *PreferenceRepositoryImpl) Set(ctx context.Context, pref *domain.Preference) error {
	query := `
		INSERT INTO preferences (user_id, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query, pref.UserID, pref.Key, pref.Value, pref.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to set preference: %w", err)
	}

	return nil
}

func (r *PreferenceRepositoryImpl) Get(ctx context.Context, userID uuid.UUID, key string) (*domain.Preference, error) {
	query := `
		SELECT user_id, key, value, updated_at
		FROM preferences
		WHERE user_id = $1 AND key = $2
	`

	var pref domain.Preference
	err := r.db.QueryRow(ctx, query, userID, key).Scan(
		&pref.UserID, &pref.Key, &pref.Value, &pref.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get preference: %w", err)
	}

	return &pref, nil
}

func (r *PreferenceRepositoryImpl) GetAll(ctx context.Context, userID uuid.UUID) ([]domain.Preference, error) {
	query := `
		SELECT user_id, key, value, updated_at
		FROM preferences
		WHERE user_id = $1
		ORDER BY key
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	defer rows.Close()

	var prefs []domain.Preference
	for rows.Next() {
		var pref domain.Preference
		if err := rows.Scan(&pref.UserID, &pref.Key, &pref.Value, &pref.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs = append(prefs, pref)
	}

	return prefs, rows.Err()
}

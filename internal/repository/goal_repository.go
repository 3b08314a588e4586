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

// GoalRepositoryImpl implements the GoalRepository interface
type GoalRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewGoalRepository creates a new GoalRepository
func NewGoalRepository(db *pgxpool.Pool) domain.GoalRepository {
	return &GoalRepositoryImpl{db: db}
}

const goalColumns = `
	id, user_id, name, target_amount, current_amount, deadline,
	priority, status, is_emergency_fund, created_at
`

func scanGoal(row pgx.Row) (*domain.Goal, error) {
	var g domain.Goal
	err := row.Scan(
		&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount,
		&g.Deadline, &g.Priority, &g.Status, &g.IsEmergencyFund, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GoalRepositoryImpl) Create(ctx context.Context, goal *domain.Goal) error {
	query := `
		INSERT INTO goals (` + goalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		goal.ID, goal.UserID, goal.Name, goal.TargetAmount, goal.CurrentAmount,
		goal.Deadline, goal.Priority, goal.Status, goal.IsEmergencyFund, goal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}

	return nil
}

// GetActiveByName matches active goals case-insensitively on name.
func (r *GoalRepositoryImpl) GetActiveByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE user_id = $1 AND status = 'active' AND LOWER(name) = LOWER($2)
		ORDER BY created_at
		LIMIT 1
	`

	goal, err := scanGoal(r.db.QueryRow(ctx, query, userID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to get goal by name: %w", err)
	}

	return goal, nil
}

// FindEmergencyReserve returns the user's emergency reserve goal:
// either flagged explicitly or, failing that, the first active goal
// whose name mentions an emergency fund or reserve.
func (r *GoalRepositoryImpl) FindEmergencyReserve(ctx context.Context, userID uuid.UUID) (*domain.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE user_id = $1 AND status = 'active'
		  AND (is_emergency_fund
		       OR LOWER(name) LIKE '%emergency%'
		       OR LOWER(name) LIKE '%reserve%'
		       OR LOWER(name) LIKE '%reserva%')
		ORDER BY is_emergency_fund DESC, created_at
		LIMIT 1
	`

	goal, err := scanGoal(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to find emergency reserve goal: %w", err)
	}

	return goal, nil
}

func (r *GoalRepositoryImpl) ListActive(ctx context.Context, userID uuid.UUID) ([]domain.Goal, error) {
	return r.list(ctx, userID, true)
}

func (r *GoalRepositoryImpl) List(ctx context.Context, userID uuid.UUID) ([]domain.Goal, error) {
	return r.list(ctx, userID, false)
}

func (r *GoalRepositoryImpl) list(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]domain.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE user_id = $1
	`
	if activeOnly {
		query += ` AND status = 'active'`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []domain.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, *goal)
	}

	return goals, rows.Err()
}

func (r *GoalRepositoryImpl) Update(ctx context.Context, goal *domain.Goal) error {
	query := `
		UPDATE goals
		SET name = $1, target_amount = $2, current_amount = $3,
		    deadline = $4, priority = $5, status = $6, is_emergency_fund = $7
		WHERE id = $8
	`

	tag, err := r.db.Exec(ctx, query,
		goal.Name, goal.TargetAmount, goal.CurrentAmount,
		goal.Deadline, goal.Priority, goal.Status, goal.IsEmergencyFund,
		goal.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGoalNotFound
	}

	return nil
}

func (r *GoalRepositoryImpl) Cancel(ctx context.Context, goalID uuid.UUID) error {
	query := `UPDATE goals SET status = 'cancelled' WHERE id = $1 AND status = 'active'`

	tag, err := r.db.Exec(ctx, query, goalID)
	if err != nil {
		return fmt.Errorf("failed to cancel goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGoalNotFound
	}

	return nil
}

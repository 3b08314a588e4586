package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"financeagent/internal/domain"
)

// AuditRepositoryImpl implements the AuditRepository interface
type AuditRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *pgxpool.Pool) domain.AuditRepository {
	return &AuditRepositoryImpl{db: db}
}

func (r *AuditRepositoryImpl) Save(ctx context.Context, entry *domain.AuditLogEntry) error {
	tools, err := json.Marshal(entry.ToolsUsed)
	if err != nil {
		return fmt.Errorf("failed to encode tools list: %w", err)
	}

	query := `
		INSERT INTO audit_logs (id, user_id, session_id, task, decision_process, tools_used, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.Exec(ctx, query,
		entry.ID, entry.UserID, entry.SessionID, entry.Task,
		entry.DecisionProcess, tools, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save audit entry: %w", err)
	}

	return nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"financeagent/internal/domain"
)

// ChatRepositoryImpl implements the ChatRepository interface
type ChatRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *pgxpool.Pool) domain.ChatRepository {
	return &ChatRepositoryImpl{db: db}
}

func (r *ChatRepositoryImpl) SaveMessage(ctx context.Context, msg *domain.ConversationMessage) error {
	query := `
		INSERT INTO chat_history (id, user_id, session_id, role, content, payload, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var payload any
	if len(msg.Payload) > 0 {
		payload = msg.Payload
	}

	_, err := r.db.Exec(ctx, query,
		msg.ID, msg.UserID, msg.SessionID, msg.Role, msg.Content, payload, msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save chat message: %w", err)
	}

	return nil
}

// History returns the most recent messages for a session in
// chronological order.
func (r *ChatRepositoryImpl) History(ctx context.Context, userID uuid.UUID, sessionID string, limit int) ([]domain.ConversationMessage, error) {
	query := `
		SELECT id, user_id, session_id, role, content, COALESCE(payload::text, ''), timestamp
		FROM (
			SELECT id, user_id, session_id, role, content, payload, timestamp
			FROM chat_history
			WHERE user_id = $1 AND session_id = $2
			ORDER BY timestamp DESC
			LIMIT $3
		) recent
		ORDER BY timestamp
	`

	return r.query(ctx, query, userID, sessionID, limit)
}

// HistoryForUser returns recent messages across all sessions.
func (r *ChatRepositoryImpl) HistoryForUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ConversationMessage, error) {
	query := `
		SELECT id, user_id, session_id, role, content, COALESCE(payload::text, ''), timestamp
		FROM (
			SELECT id, user_id, session_id, role, content, payload, timestamp
			FROM chat_history
			WHERE user_id = $1
			ORDER BY timestamp DESC
			LIMIT $2
		) recent
		ORDER BY timestamp
	`

	return r.query(ctx, query, userID, limit)
}

func (r *ChatRepositoryImpl) query(ctx context.Context, query string, args ...any) ([]domain.ConversationMessage, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	defer rows.Close()

	var msgs []domain.ConversationMessage
	for rows.Next() {
		var m domain.ConversationMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.SessionID, &m.Role, &m.Content, &m.Payload, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		msgs = append(msgs, m)
	}

	return msgs, rows.Err()
}

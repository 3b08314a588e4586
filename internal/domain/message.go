package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConversationMessage is one row of the append-only chat transcript,
// ordered by Timestamp within a (user, session) pair. Payload holds the
// serialized structured form of the message (tool calls, call IDs) so
// the transcript can be replayed losslessly; Content is the plain text.
type ConversationMessage struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Payload   string    `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Message role constants
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// AuditLogEntry is the append-only trace of one reasoning-loop
// execution. Writes are best-effort by policy: losing an entry must
// never fail the operation it describes.
type AuditLogEntry struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	SessionID       string    `json:"session_id"`
	Task            string    `json:"task"`
	DecisionProcess string    `json:"decision_process"`
	ToolsUsed       []string  `json:"tools_used"`
	Timestamp       time.Time `json:"timestamp"`
}

package dto

import "time"

// ChatRequest is the JSON chat request payload
type ChatRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Mode      string `json:"mode"`
}

// ChatResponse is the assistant's reply. Action names the mutation the
// turn appears to have performed, or null when the reply reads as
// informational; it is a phrase-match heuristic, not a ledger fact.
type ChatResponse struct {
	Response  string  `json:"response"`
	SessionID string  `json:"session_id"`
	Action    *string `json:"action"`
}

// ChatMessageOutput is one history entry in API responses
type ChatMessageOutput struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

package http

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"financeagent/internal/delivery/http/dto"
	"financeagent/internal/domain"
	"financeagent/internal/usecase"
)

// ChatHandler handles conversational requests
type ChatHandler struct {
	agent    *usecase.AgentService
	chatRepo domain.ChatRepository
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(agent *usecase.AgentService, chatRepo domain.ChatRepository) *ChatHandler {
	return &ChatHandler{agent: agent, chatRepo: chatRepo}
}

// actionLabels map known tool acknowledgement phrases to the mutation
// they describe. First match wins, so specific phrases come first.
var actionLabels = []struct {
	phrase string
	action string
}{
	{"recorded inflow", "transaction_added"},
	{"recorded outflow", "transaction_added"},
	{"balance set to", "balance_updated"},
	{"created goal", "goal_created"},
	{"goal completed", "goal_completed"},
	{"saved (", "goal_updated"},
	{"cancelled", "goal_cancelled"},
	{"set hard limit", "limit_set"},
	{"set soft limit", "limit_set"},
	{"remembered:", "preference_saved"},
	{"per unit", "holding_added"},
}

// actionLabel classifies a reply by matching known phrases; nil means
// the turn looks read-only. Heuristic, never authoritative.
func actionLabel(reply string) *string {
	lower := strings.ToLower(reply)
	for _, m := range actionLabels {
		if strings.Contains(lower, m.phrase) {
			action := m.action
			return &action
		}
	}
	return nil
}

// Chat handles a multipart form chat turn
// POST /chat
func (h *ChatHandler) Chat(c echo.Context) error {
	userIDStr := c.FormValue("user_id")
	message := c.FormValue("message")
	sessionID := c.FormValue("session_id")
	mode := c.FormValue("mode")

	// Attachments are not parsed server side. The model is told about
	// the file so it can ask the user for the numbers it needs.
	if file, err := c.FormFile("file"); err == nil && file != nil {
		message = strings.TrimSpace(message) + "\n[attached file: " + file.Filename + "]"
	}

	return h.run(c, userIDStr, sessionID, message, mode)
}

// ChatJSON handles a JSON chat turn, same contract without file upload
// POST /chat/json
func (h *ChatHandler) ChatJSON(c echo.Context) error {
	var req dto.ChatRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	return h.run(c, req.UserID, req.SessionID, req.Message, req.Mode)
}

func (h *ChatHandler) run(c echo.Context, userIDStr, sessionID, message, mode string) error {
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return BadRequestResponse(c, "user_id must be a valid UUID")
	}
	if strings.TrimSpace(message) == "" {
		return BadRequestResponse(c, "message is required")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	reply := h.agent.Run(c.Request().Context(), userID, sessionID, message, mode)

	return SuccessResponse(c, dto.ChatResponse{
		Response:  reply,
		SessionID: sessionID,
		Action:    actionLabel(reply),
	})
}

// History returns recent user and assistant turns. Internal tool and
// system messages never leave the server.
// GET /chat/history/:user_id
func (h *ChatHandler) History(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		return BadRequestResponse(c, "user_id must be a valid UUID")
	}

	msgs, err := h.chatRepo.HistoryForUser(c.Request().Context(), userID, 50)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load chat history", err)
	}

	out := make([]dto.ChatMessageOutput, 0, len(msgs))
	for _, m := range msgs {
		if m.Role != domain.RoleUser && m.Role != domain.RoleAssistant {
			continue
		}
		out = append(out, dto.ChatMessageOutput{
			Role:      m.Role,
			Content:   m.Content,
			SessionID: m.SessionID,
			Timestamp: m.Timestamp,
		})
	}

	return SuccessResponse(c, out)
}

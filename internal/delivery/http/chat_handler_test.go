package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financeagent/internal/domain"
)

func TestActionLabel(t *testing.T) {
	label := func(reply string) string {
		a := actionLabel(reply)
		require.NotNil(t, a, reply)
		return *a
	}

	assert.Equal(t, "transaction_added", label("Recorded outflow of 150.00 (food). New balance: 850.00"))
	assert.Equal(t, "transaction_added", label("Recorded inflow of 900.00 (salary). New balance: 1750.00"))
	assert.Equal(t, "balance_updated", label("Balance set to 1000.00 CVE"))
	assert.Equal(t, "goal_created", label("Created goal \"Vacation\" with target 1000.00"))
	assert.Equal(t, "goal_completed", label("Goal \"Vacation\" target reached, goal completed!"))
	assert.Equal(t, "goal_cancelled", label("Goal \"Vacation\" cancelled."))
	assert.Equal(t, "limit_set", label("Set hard limit of 200.00/month for food"))
	assert.Equal(t, "preference_saved", label("Remembered: age = 34"))
	assert.Equal(t, "holding_added", label("Added 2 AAPL (stock) at 180.00 per unit."))

	// Read-only replies carry no action.
	assert.Nil(t, actionLabel("You spent 300 on food last month."))
	assert.Nil(t, actionLabel("Your balance is 500."))
	assert.Nil(t, actionLabel("No transactions recorded yet."))
}

type stubChatRepo struct {
	msgs []domain.ConversationMessage
}

func (s *stubChatRepo) SaveMessage(ctx context.Context, msg *domain.ConversationMessage) error {
	s.msgs = append(s.msgs, *msg)
	return nil
}

func (s *stubChatRepo) History(ctx context.Context, userID uuid.UUID, sessionID string, limit int) ([]domain.ConversationMessage, error) {
	return s.msgs, nil
}

func (s *stubChatRepo) HistoryForUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ConversationMessage, error) {
	return s.msgs, nil
}

func TestHistory_FiltersInternalRoles(t *testing.T) {
	userID := uuid.New()
	repo := &stubChatRepo{msgs: []domain.ConversationMessage{
		{UserID: userID, Role: domain.RoleUser, Content: "hi", Timestamp: time.Now()},
		{UserID: userID, Role: domain.RoleTool, Content: "balance is 500", Timestamp: time.Now()},
		{UserID: userID, Role: domain.RoleSystem, Content: "instructions", Timestamp: time.Now()},
		{UserID: userID, Role: domain.RoleAssistant, Content: "hello!", Timestamp: time.Now()},
	}}
	h := NewChatHandler(nil, repo)

	e := echo.New()
	req := httptest.NewRequest("GET", "/chat/history/"+userID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/chat/history/:user_id")
	c.SetParamNames("user_id")
	c.SetParamValues(userID.String())

	require.NoError(t, h.History(c))
	assert.Equal(t, 200, rec.Code)

	var resp struct {
		Data []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Data, 2)
	assert.Equal(t, domain.RoleUser, resp.Data[0].Role)
	assert.Equal(t, domain.RoleAssistant, resp.Data[1].Role)
	for _, m := range resp.Data {
		assert.NotContains(t, m.Content, "balance is 500")
		assert.NotContains(t, m.Content, "instructions")
	}
}

func TestHistory_BadUserID(t *testing.T) {
	h := NewChatHandler(nil, &stubChatRepo{})

	e := echo.New()
	req := httptest.NewRequest("GET", "/chat/history/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/chat/history/:user_id")
	c.SetParamNames("user_id")
	c.SetParamValues("not-a-uuid")

	require.NoError(t, h.History(c))
	assert.Equal(t, 400, rec.Code)
}

func TestChatJSON_Validation(t *testing.T) {
	h := NewChatHandler(nil, &stubChatRepo{})
	e := echo.New()

	// Invalid user id.
	body := `{"user_id": "nope", "message": "hi"}`
	req := httptest.NewRequest("POST", "/chat/json", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.ChatJSON(e.NewContext(req, rec)))
	assert.Equal(t, 400, rec.Code)

	// Missing message.
	body = `{"user_id": "` + uuid.NewString() + `", "message": "  "}`
	req = httptest.NewRequest("POST", "/chat/json", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	require.NoError(t, h.ChatJSON(e.NewContext(req, rec)))
	assert.Equal(t, 400, rec.Code)
}

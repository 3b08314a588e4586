package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financeagent/configs"
	"financeagent/internal/domain"
	"financeagent/internal/infra"
	"financeagent/internal/service"
	"financeagent/internal/tools"
)

// scriptedLLM replays canned responses and records every call.
type scriptedLLM struct {
	responses []*domain.ChatMessage
	errs      []error
	calls     [][]domain.ChatMessage
	tools     [][]domain.ToolDef
}

func (s *scriptedLLM) Chat(ctx context.Context, messages []domain.ChatMessage, defs []domain.ToolDef) (*domain.ChatMessage, error) {
	s.calls = append(s.calls, messages)
	s.tools = append(s.tools, defs)

	i := len(s.calls) - 1
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i >= len(s.responses) {
		return nil, errors.New("no scripted response left")
	}
	return s.responses[i], nil
}

type memChatRepo struct {
	msgs []domain.ConversationMessage
}

func (m *memChatRepo) SaveMessage(ctx context.Context, msg *domain.ConversationMessage) error {
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *memChatRepo) History(ctx context.Context, userID uuid.UUID, sessionID string, limit int) ([]domain.ConversationMessage, error) {
	var out []domain.ConversationMessage
	for _, msg := range m.msgs {
		if msg.UserID == userID && msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memChatRepo) HistoryForUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ConversationMessage, error) {
	return m.History(ctx, userID, "", limit)
}

type memAuditRepo struct {
	entries []domain.AuditLogEntry
}

func (m *memAuditRepo) Save(ctx context.Context, entry *domain.AuditLogEntry) error {
	m.entries = append(m.entries, *entry)
	return nil
}

type memPrefRepo struct{}

func (memPrefRepo) Set(ctx context.Context, pref *domain.Preference) error { return nil }
func (memPrefRepo) Get(ctx context.Context, userID uuid.UUID, key string) (*domain.Preference, error) {
	return nil, nil
}
func (memPrefRepo) GetAll(ctx context.Context, userID uuid.UUID) ([]domain.Preference, error) {
	return nil, nil
}

// Empty ledger backing for the advisor used in system prompts.
type emptyTxnRepo struct{}

func (emptyTxnRepo) Append(ctx context.Context, txn *domain.Transaction, bal *domain.BalanceRecord) error {
	return nil
}
func (emptyTxnRepo) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Transaction, error) {
	return nil, nil
}
func (emptyTxnRepo) SumByKindSince(ctx context.Context, userID uuid.UUID, kind string, since time.Time) (float64, error) {
	return 0, nil
}
func (emptyTxnRepo) SumCategorySince(ctx context.Context, userID uuid.UUID, category string, since time.Time) (float64, error) {
	return 0, nil
}
func (emptyTxnRepo) ExpenseByCategory(ctx context.Context, userID uuid.UUID, since time.Time) ([]domain.CategoryTotal, error) {
	return nil, nil
}

type emptyBalanceRepo struct{}

func (emptyBalanceRepo) Current(ctx context.Context, userID uuid.UUID) (*domain.BalanceRecord, error) {
	return nil, domain.ErrNoBalance
}
func (emptyBalanceRepo) Append(ctx context.Context, rec *domain.BalanceRecord) error { return nil }

type emptyGoalRepo struct{}

func (emptyGoalRepo) Create(ctx context.Context, goal *domain.Goal) error { return nil }
func (emptyGoalRepo) GetActiveByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Goal, error) {
	return nil, domain.ErrGoalNotFound
}
func (emptyGoalRepo) FindEmergencyReserve(ctx context.Context, userID uuid.UUID) (*domain.Goal, error) {
	return nil, domain.ErrGoalNotFound
}
func (emptyGoalRepo) ListActive(ctx context.Context, userID uuid.UUID) ([]domain.Goal, error) {
	return nil, nil
}
func (emptyGoalRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.Goal, error) {
	return nil, nil
}
func (emptyGoalRepo) Update(ctx context.Context, goal *domain.Goal) error { return nil }
func (emptyGoalRepo) Cancel(ctx context.Context, goalID uuid.UUID) error  { return nil }

type agentFixture struct {
	svc   *AgentService
	llm   *scriptedLLM
	chat  *memChatRepo
	audit *memAuditRepo
}

func newAgentFixture(llm *scriptedLLM, registry *tools.Registry) *agentFixture {
	chat := &memChatRepo{}
	audit := &memAuditRepo{}

	advisor := service.NewAdvisorService(
		emptyTxnRepo{}, emptyBalanceRepo{}, emptyGoalRepo{}, memPrefRepo{}, audit,
		infra.NewSnapshotCache(nil, 0),
		configs.AdvisorConfig{
			MinReserveMonths:       6,
			SafetyReserveMonths:    3,
			MinSavingsRate:         0.10,
			MonthlyExpenseFallback: 1500,
			DefaultAge:             30,
			AggressiveAgeBelow:     30,
			ModerateAgeUpTo:        45,
			DebtCategory:           "debt",
		},
	)

	svc := NewAgentService(llm, registry, advisor, chat, audit, memPrefRepo{},
		configs.AgentConfig{MaxIterations: 5, HistoryLimit: 15})
	return &agentFixture{svc: svc, llm: llm, chat: chat, audit: audit}
}

func classifyReply(needsTools bool) *domain.ChatMessage {
	return &domain.ChatMessage{
		Role:    domain.RoleAssistant,
		Content: fmt.Sprintf(`{"category": "spending", "complexity": "low", "needs_tools": %t}`, needsTools),
	}
}

func planReply(steps string) *domain.ChatMessage {
	return &domain.ChatMessage{Role: domain.RoleAssistant, Content: steps}
}

func testRegistry(handler tools.Handler) *tools.Registry {
	r := tools.NewRegistry()
	r.Register(tools.Definition{
		Name:        "lookup",
		Description: "returns canned data",
		Parameters:  map[string]any{"type": "object"},
		Handler:     handler,
	})
	return r
}

func TestRun_DirectAnswer(t *testing.T) {
	llm := &scriptedLLM{responses: []*domain.ChatMessage{
		classifyReply(false),
		{Role: domain.RoleAssistant, Content: "You spent 300 on food."},
	}}
	f := newAgentFixture(llm, testRegistry(nil))

	reply := f.svc.Run(context.Background(), uuid.New(), "s1", "how much on food?", "")

	assert.Equal(t, "You spent 300 on food.", reply)

	// No planning call and no tool schemas when classification says no
	// tools are needed.
	require.Len(t, llm.tools, 2)
	assert.Empty(t, llm.tools[1])

	// User turn and assistant turn both stored, one audit entry.
	require.Len(t, f.chat.msgs, 2)
	assert.Equal(t, domain.RoleUser, f.chat.msgs[0].Role)
	assert.Equal(t, domain.RoleAssistant, f.chat.msgs[1].Role)
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, "how much on food?", f.audit.entries[0].Task)
	assert.Empty(t, f.audit.entries[0].ToolsUsed)
}

func TestRun_ToolCallPath(t *testing.T) {
	called := false
	registry := testRegistry(func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
		called = true
		return "balance is 500", nil
	})

	llm := &scriptedLLM{responses: []*domain.ChatMessage{
		classifyReply(true),
		planReply("1. Read the balance. 2. Answer."),
		{Role: domain.RoleAssistant, ToolCalls: []domain.ToolCall{{ID: "c1", Name: "lookup"}}},
		{Role: domain.RoleAssistant, Content: "Your balance is 500."},
	}}
	f := newAgentFixture(llm, registry)

	reply := f.svc.Run(context.Background(), uuid.New(), "s1", "what's my balance?", "")

	assert.True(t, called)
	assert.Equal(t, "Your balance is 500.", reply)

	// The tool result went back to the model as a tool message.
	last := llm.calls[3]
	toolMsg := last[len(last)-1]
	assert.Equal(t, domain.RoleTool, toolMsg.Role)
	assert.Equal(t, "balance is 500", toolMsg.Content)
	assert.Equal(t, "c1", toolMsg.ToolCallID)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, []string{"lookup"}, f.audit.entries[0].ToolsUsed)
}

func TestRun_PlanRecordedInAudit(t *testing.T) {
	llm := &scriptedLLM{responses: []*domain.ChatMessage{
		classifyReply(true),
		planReply("1. Check the balance."),
		{Role: domain.RoleAssistant, Content: "All good."},
	}}
	f := newAgentFixture(llm, testRegistry(nil))

	f.svc.Run(context.Background(), uuid.New(), "s1", "am I ok this month?", "")

	// The plan call itself carries no tool schemas.
	require.Len(t, llm.tools, 3)
	assert.Empty(t, llm.tools[1])

	// The plan reaches both the audit trail and the acting prompt.
	require.Len(t, f.audit.entries, 1)
	assert.Contains(t, f.audit.entries[0].DecisionProcess, "plan: 1. Check the balance.")
	sys := llm.calls[2][0]
	assert.Equal(t, domain.RoleSystem, sys.Role)
	assert.Contains(t, sys.Content, "1. Check the balance.")
}

func TestRun_PersistsToolTraffic(t *testing.T) {
	registry := testRegistry(func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
		return "balance is 500", nil
	})

	llm := &scriptedLLM{responses: []*domain.ChatMessage{
		classifyReply(true),
		planReply("1. Read the balance."),
		{Role: domain.RoleAssistant, ToolCalls: []domain.ToolCall{{ID: "c1", Name: "lookup"}}},
		{Role: domain.RoleAssistant, Content: "Your balance is 500."},
	}}
	f := newAgentFixture(llm, registry)

	f.svc.Run(context.Background(), uuid.New(), "s1", "what's my balance?", "")

	// Every turn of the exchange lands in the transcript in production
	// order, with the structured side serialized alongside.
	require.Len(t, f.chat.msgs, 4)
	assert.Equal(t, domain.RoleUser, f.chat.msgs[0].Role)
	assert.Equal(t, domain.RoleAssistant, f.chat.msgs[1].Role)
	assert.Contains(t, f.chat.msgs[1].Payload, "lookup")
	assert.Equal(t, domain.RoleTool, f.chat.msgs[2].Role)
	assert.Equal(t, "balance is 500", f.chat.msgs[2].Content)
	assert.Contains(t, f.chat.msgs[2].Payload, "c1")
	assert.Equal(t, domain.RoleAssistant, f.chat.msgs[3].Role)
	assert.Equal(t, "Your balance is 500.", f.chat.msgs[3].Content)
}

func TestRun_ToolErrorFedBackToModel(t *testing.T) {
	registry := testRegistry(func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
		return "", errors.New("store unavailable")
	})

	llm := &scriptedLLM{responses: []*domain.ChatMessage{
		classifyReply(true),
		planReply("1. Read the balance."),
		{Role: domain.RoleAssistant, ToolCalls: []domain.ToolCall{{ID: "c1", Name: "lookup"}}},
		{Role: domain.RoleAssistant, Content: "I could not read your data just now."},
	}}
	f := newAgentFixture(llm, registry)

	reply := f.svc.Run(context.Background(), uuid.New(), "s1", "balance?", "")

	assert.Equal(t, "I could not read your data just now.", reply)

	last := llm.calls[3]
	toolMsg := last[len(last)-1]
	assert.Equal(t, domain.RoleTool, toolMsg.Role)
	assert.Contains(t, toolMsg.Content, "Error:")
	assert.Contains(t, toolMsg.Content, "store unavailable")
}

func TestRun_UnknownToolRejected(t *testing.T) {
	llm := &scriptedLLM{responses: []*domain.ChatMessage{
		classifyReply(true),
		planReply("1. Do it."),
		{Role: domain.RoleAssistant, ToolCalls: []domain.ToolCall{{ID: "c1", Name: "drop_tables"}}},
		{Role: domain.RoleAssistant, Content: "Sorry, I cannot do that."},
	}}
	f := newAgentFixture(llm, testRegistry(nil))

	reply := f.svc.Run(context.Background(), uuid.New(), "s1", "do something weird", "")

	assert.Equal(t, "Sorry, I cannot do that.", reply)

	last := llm.calls[3]
	toolMsg := last[len(last)-1]
	assert.Contains(t, toolMsg.Content, "unknown tool")
}

func TestRun_IterationCapAborts(t *testing.T) {
	loopReply := &domain.ChatMessage{
		Role:      domain.RoleAssistant,
		ToolCalls: []domain.ToolCall{{ID: "c", Name: "lookup"}},
	}
	registry := testRegistry(func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
		return "more data", nil
	})

	llm := &scriptedLLM{responses: []*domain.ChatMessage{
		classifyReply(true),
		planReply("1. Keep digging."),
		loopReply, loopReply, loopReply, loopReply, loopReply,
	}}
	f := newAgentFixture(llm, registry)

	reply := f.svc.Run(context.Background(), uuid.New(), "s1", "loop forever", "")

	assert.Equal(t, abortedReply, reply)
	// Classification, plan, then exactly MaxIterations loop calls.
	assert.Len(t, llm.calls, 7)
	require.Len(t, f.audit.entries, 1)
	assert.Contains(t, f.audit.entries[0].DecisionProcess, "aborted")
}

func TestRun_ModelFailureIsOperational(t *testing.T) {
	llm := &scriptedLLM{
		responses: []*domain.ChatMessage{classifyReply(false), nil},
		errs:      []error{nil, errors.New("connection refused")},
	}
	f := newAgentFixture(llm, testRegistry(nil))

	reply := f.svc.Run(context.Background(), uuid.New(), "s1", "hello", "")

	assert.Equal(t, operationalReply, reply)
	// The failed turn is still recorded for the user.
	require.Len(t, f.chat.msgs, 2)
}

func TestRun_ClassificationFallback(t *testing.T) {
	llm := &scriptedLLM{responses: []*domain.ChatMessage{
		{Role: domain.RoleAssistant, Content: "not json at all"},
		planReply("1. Greet back."),
		{Role: domain.RoleAssistant, Content: "Hello!"},
	}}
	f := newAgentFixture(llm, testRegistry(nil))

	reply := f.svc.Run(context.Background(), uuid.New(), "s1", "hi", "")

	assert.Equal(t, "Hello!", reply)
	// Fallback classification keeps tools available.
	require.Len(t, llm.tools, 3)
	assert.NotEmpty(t, llm.tools[2])
}

func TestRun_AuditorModeInSystemPrompt(t *testing.T) {
	llm := &scriptedLLM{responses: []*domain.ChatMessage{
		classifyReply(false),
		{Role: domain.RoleAssistant, Content: "Here is why."},
	}}
	f := newAgentFixture(llm, testRegistry(nil))

	f.svc.Run(context.Background(), uuid.New(), "s1", "review my month", "auditor")

	require.Len(t, llm.calls, 2)
	sys := llm.calls[1][0]
	assert.Equal(t, domain.RoleSystem, sys.Role)
	assert.Contains(t, sys.Content, "Auditor mode is active")
}

func TestRun_ThinReserveWarningInSystemPrompt(t *testing.T) {
	llm := &scriptedLLM{responses: []*domain.ChatMessage{
		classifyReply(false),
		{Role: domain.RoleAssistant, Content: "Let's build your reserve first."},
	}}
	f := newAgentFixture(llm, testRegistry(nil))

	f.svc.Run(context.Background(), uuid.New(), "s1", "should I buy stocks?", "")

	// The empty ledger yields a zero-month reserve, so the standing
	// instruction must steer the model away from investing.
	require.Len(t, llm.calls, 2)
	sys := llm.calls[1][0]
	assert.Equal(t, domain.RoleSystem, sys.Role)
	assert.Contains(t, sys.Content, "Do not recommend investments")
}

func TestRun_EmptyMessage(t *testing.T) {
	llm := &scriptedLLM{}
	f := newAgentFixture(llm, testRegistry(nil))

	reply := f.svc.Run(context.Background(), uuid.New(), "s1", "   ", "")

	assert.NotEmpty(t, reply)
	assert.Empty(t, llm.calls)
	assert.Empty(t, f.chat.msgs)
}

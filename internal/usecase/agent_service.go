package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"financeagent/configs"
	"financeagent/internal/domain"
	"financeagent/internal/service"
	"financeagent/internal/tools"
)

const abortedReply = "I could not complete that request within my reasoning budget. Please try a simpler question or break it into steps."

const operationalReply = "Something went wrong on my side while handling that. Your data is safe; please try again in a moment."

// AgentService runs the conversational reasoning loop: classify the
// request, plan, act through tools and respond. The model only touches
// user data through the tool registry.
type AgentService struct {
	llm       domain.LLMService
	registry  *tools.Registry
	advisor   *service.AdvisorService
	chatRepo  domain.ChatRepository
	auditRepo domain.AuditRepository
	prefRepo  domain.PreferenceRepository
	cfg       configs.AgentConfig
}

func NewAgentService(
	llm domain.LLMService,
	registry *tools.Registry,
	advisor *service.AdvisorService,
	chatRepo domain.ChatRepository,
	auditRepo domain.AuditRepository,
	prefRepo domain.PreferenceRepository,
	cfg configs.AgentConfig,
) *AgentService {
	return &AgentService{
		llm:       llm,
		registry:  registry,
		advisor:   advisor,
		chatRepo:  chatRepo,
		auditRepo: auditRepo,
		prefRepo:  prefRepo,
		cfg:       cfg,
	}
}

type classification struct {
	Category   string `json:"category"`
	Complexity string `json:"complexity"`
	NeedsTools bool   `json:"needs_tools"`
}

// Run handles one user turn end to end. Internal failures never reach
// the caller as errors; the user gets an operational message instead.
func (s *AgentService) Run(ctx context.Context, userID uuid.UUID, sessionID, message, mode string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return "Tell me what you'd like to do with your finances."
	}

	// reason persists the user turn and all intermediate tool traffic
	// in production order; only the final reply is saved here.
	reply, toolsUsed, decision := s.reason(ctx, userID, sessionID, message, mode)

	s.saveMessage(ctx, userID, sessionID, domain.RoleAssistant, reply, "")

	entry := &domain.AuditLogEntry{
		ID:              uuid.New(),
		UserID:          userID,
		SessionID:       sessionID,
		Task:            message,
		DecisionProcess: decision,
		ToolsUsed:       toolsUsed,
		Timestamp:       time.Now().UTC(),
	}
	if err := s.auditRepo.Save(ctx, entry); err != nil {
		log.Printf("[WARN] failed to record conversation audit: %v", err)
	}

	return reply
}

func (s *AgentService) reason(ctx context.Context, userID uuid.UUID, sessionID, message, mode string) (reply string, toolsUsed []string, decision string) {
	cls := s.classify(ctx, message)
	steps := []string{fmt.Sprintf("classified as %s/%s (tools=%t)", cls.Category, cls.Complexity, cls.NeedsTools)}

	plan := s.plan(ctx, message, cls)
	if plan != "" {
		steps = append(steps, "plan: "+plan)
	}

	sys := s.systemPrompt(ctx, userID, cls, mode)
	if cls.NeedsTools && plan != "" {
		sys += "\n\nYour working plan (adjust freely):\n" + plan
	}
	messages := []domain.ChatMessage{{Role: domain.RoleSystem, Content: sys}}

	history, err := s.chatRepo.History(ctx, userID, sessionID, s.cfg.HistoryLimit)
	if err != nil {
		log.Printf("[WARN] failed to load chat history: %v", err)
	}
	for _, h := range history {
		if h.Role != domain.RoleUser && h.Role != domain.RoleAssistant {
			continue
		}
		messages = append(messages, domain.ChatMessage{Role: h.Role, Content: h.Content})
	}
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: message})

	// History for this turn is already assembled, so the user message
	// can be persisted without feeding the turn into its own context.
	s.saveMessage(ctx, userID, sessionID, domain.RoleUser, message, "")

	var defs []domain.ToolDef
	if cls.NeedsTools {
		defs = s.registry.Definitions()
	}

	for i := 0; i < s.cfg.MaxIterations; i++ {
		resp, err := s.llm.Chat(ctx, messages, defs)
		if err != nil {
			log.Printf("ERROR: model call failed: %v", err)
			return operationalReply, toolsUsed, strings.Join(append(steps, "model call failed"), "; ")
		}

		if len(resp.ToolCalls) == 0 {
			steps = append(steps, fmt.Sprintf("responded after %d iteration(s)", i+1))
			return resp.Content, toolsUsed, strings.Join(steps, "; ")
		}

		messages = append(messages, *resp)
		s.saveMessage(ctx, userID, sessionID, domain.RoleAssistant, resp.Content, marshalPayload(resp.ToolCalls))

		for _, call := range resp.ToolCalls {
			toolsUsed = append(toolsUsed, call.Name)

			result, err := s.registry.Execute(ctx, userID, call.Name, call.Arguments)
			if err != nil {
				// Tool failures go back to the model as results so it
				// can recover or explain, instead of ending the turn.
				result = "Error: " + err.Error()
				steps = append(steps, fmt.Sprintf("%s failed: %v", call.Name, err))
			} else {
				steps = append(steps, "ran "+call.Name)
			}

			messages = append(messages, domain.ChatMessage{
				Role:       domain.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
			s.saveMessage(ctx, userID, sessionID, domain.RoleTool, result,
				marshalPayload(map[string]string{"tool_call_id": call.ID, "name": call.Name}))
		}
	}

	steps = append(steps, "aborted at iteration cap")
	return abortedReply, toolsUsed, strings.Join(steps, "; ")
}

// plan asks the model for a short advisory outline before acting. It is
// never binding and failures are swallowed like classification. Turns
// that need no tools are trivially planned without a model call.
func (s *AgentService) plan(ctx context.Context, message string, cls classification) string {
	if !cls.NeedsTools {
		return "direct answer"
	}

	prompt := []domain.ChatMessage{
		{
			Role: domain.RoleSystem,
			Content: "You plan for a personal finance assistant that has tools for " +
				"balances, transactions, goals, budgets, portfolio and market lookups. " +
				"List, in at most three short numbered steps, how to handle the request. " +
				"Reply with the steps only.",
		},
		{Role: domain.RoleUser, Content: message},
	}

	resp, err := s.llm.Chat(ctx, prompt, nil)
	if err != nil {
		log.Printf("[WARN] planning failed: %v", err)
		return ""
	}
	return strings.TrimSpace(resp.Content)
}

// marshalPayload serializes the structured side of a message for the
// transcript. Losing it costs replay fidelity, not correctness.
func marshalPayload(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[WARN] failed to serialize message payload: %v", err)
		return ""
	}
	return string(data)
}

// classify asks the model to label the request. Any failure falls back
// to a safe default rather than blocking the turn.
func (s *AgentService) classify(ctx context.Context, message string) classification {
	fallback := classification{Category: "general", Complexity: "medium", NeedsTools: true}

	prompt := []domain.ChatMessage{
		{
			Role: domain.RoleSystem,
			Content: "Classify the user request for a personal finance assistant. " +
				`Reply with JSON only: {"category": "balance|spending|goals|investing|market|general", ` +
				`"complexity": "low|medium|high", "needs_tools": true|false}`,
		},
		{Role: domain.RoleUser, Content: message},
	}

	resp, err := s.llm.Chat(ctx, prompt, nil)
	if err != nil {
		log.Printf("[WARN] classification failed: %v", err)
		return fallback
	}

	content := strings.TrimSpace(resp.Content)
	if i := strings.Index(content, "{"); i >= 0 {
		if j := strings.LastIndex(content, "}"); j > i {
			content = content[i : j+1]
		}
	}

	var cls classification
	if err := json.Unmarshal([]byte(content), &cls); err != nil {
		log.Printf("[WARN] unparseable classification %q: %v", resp.Content, err)
		return fallback
	}
	if cls.Category == "" {
		cls.Category = fallback.Category
	}
	if cls.Complexity == "" {
		cls.Complexity = fallback.Complexity
	}
	return cls
}

// systemPrompt layers the standing instruction, the user's stored
// profile and the current financial facts into one system message.
func (s *AgentService) systemPrompt(ctx context.Context, userID uuid.UUID, cls classification, mode string) string {
	var b strings.Builder

	b.WriteString("You are a careful personal finance assistant.\n")
	b.WriteString("CRITICAL: never invent balances, transactions or prices. ")
	b.WriteString("Always read real data through your tools before stating numbers, ")
	b.WriteString("and always record money movements through tools rather than just describing them.\n")
	b.WriteString("Favor building the emergency reserve and paying down debt before discretionary spending or investing.\n")

	if prefs, err := s.prefRepo.GetAll(ctx, userID); err == nil && len(prefs) > 0 {
		b.WriteString("\nKnown user profile:\n")
		for _, p := range prefs {
			fmt.Fprintf(&b, "- %s: %s\n", p.Key, p.Value)
		}
	}

	if snap, err := s.advisor.CachedStatus(ctx, userID); err == nil {
		b.WriteString("\nCurrent financial facts:\n")
		fmt.Fprintf(&b, "- balance: %.2f\n", snap.Balance)
		fmt.Fprintf(&b, "- monthly expenses: %.2f\n", snap.MonthlyExpenses)
		fmt.Fprintf(&b, "- emergency reserve: %.2f (%.1f months)\n", snap.CurrentReserve, snap.ReserveMonths)
		fmt.Fprintf(&b, "- savings rate (30d): %.0f%%\n", snap.SavingsRate*100)
		if snap.HasDebt {
			b.WriteString("- active debt payments in the last 90 days\n")
		}
		if snap.ReserveMonths < s.advisor.MinReserveMonths() {
			fmt.Fprintf(&b, "\nIMPORTANT: the emergency reserve covers only %.1f months of expenses. "+
				"Do not recommend investments; steer the user toward building the reserve first.\n",
				snap.ReserveMonths)
		}
	}

	fmt.Fprintf(&b, "\nThe request was classified as %s (%s complexity). ", cls.Category, cls.Complexity)
	if cls.NeedsTools {
		b.WriteString("Plan the tool calls you need, make them, then answer concisely with the results.")
	} else {
		b.WriteString("Answer directly and concisely.")
	}

	if mode == "auditor" {
		b.WriteString("\n\nAuditor mode is active: justify every decision at the end of your reply.")
	}

	return b.String()
}

func (s *AgentService) saveMessage(ctx context.Context, userID uuid.UUID, sessionID, role, content, payload string) {
	msg := &domain.ConversationMessage{
		ID:        uuid.New(),
		UserID:    userID,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
	if err := s.chatRepo.SaveMessage(ctx, msg); err != nil {
		log.Printf("[WARN] failed to save chat message: %v", err)
	}
}

package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"financeagent/internal/domain"
	"financeagent/internal/service"
)

// RegisterGoalTools wires the financial goal management tool.
func RegisterGoalTools(r *Registry, ledger *service.LedgerService) {
	r.Register(Definition{
		Name:        "manage_financial_goals",
		Description: "Manage savings goals. Actions: add, update, list, delete. Updating past the target completes the goal automatically.",
		Parameters: objectSchema(map[string]any{
			"action":        map[string]any{"type": "string", "enum": []string{"add", "update", "list", "delete"}},
			"name":          map[string]any{"type": "string", "description": "Goal name, required for add/update/delete"},
			"target_amount": map[string]any{"type": "number", "description": "Target amount for add, or new target for update"},
			"add_amount":    map[string]any{"type": "number", "description": "Amount to add to saved progress (update)"},
			"set_amount":    map[string]any{"type": "number", "description": "Set saved progress to an exact value (update)"},
			"deadline":      map[string]any{"type": "string", "description": "Deadline in YYYY-MM-DD"},
			"priority":      map[string]any{"type": "string", "enum": []string{"high", "medium", "low"}},
		}, []string{"action"}),
		Required: []string{"action"},
		Handler: func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
			action := strings.ToLower(stringArg(args, "action"))
			switch action {
			case "add":
				return addGoal(ctx, ledger, userID, args)
			case "update":
				return updateGoal(ctx, ledger, userID, args)
			case "list":
				return listGoals(ctx, ledger, userID)
			case "delete":
				goal, err := ledger.CancelGoal(ctx, userID, stringArg(args, "name"))
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Goal %q cancelled.", goal.Name), nil
			default:
				return "", fmt.Errorf("%w: unknown action %q", domain.ErrValidation, action)
			}
		},
	})
}

func addGoal(ctx context.Context, ledger *service.LedgerService, userID uuid.UUID, args map[string]any) (string, error) {
	target, ok := floatArg(args, "target_amount")
	if !ok {
		return "", fmt.Errorf("%w: target_amount is required to add a goal", domain.ErrValidation)
	}

	deadline, err := parseDeadline(args)
	if err != nil {
		return "", err
	}

	goal, err := ledger.CreateGoal(ctx, userID, stringArg(args, "name"), target, deadline, strings.ToLower(stringArg(args, "priority")))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Created goal %q with target %.2f (%s priority).", goal.Name, goal.TargetAmount, goal.Priority), nil
}

func updateGoal(ctx context.Context, ledger *service.LedgerService, userID uuid.UUID, args map[string]any) (string, error) {
	var upd service.GoalUpdate
	if v, ok := floatArg(args, "add_amount"); ok {
		upd.AddAmount = &v
	}
	if v, ok := floatArg(args, "set_amount"); ok {
		upd.SetAmount = &v
	}
	if v, ok := floatArg(args, "target_amount"); ok {
		upd.TargetAmount = &v
	}
	if p := strings.ToLower(stringArg(args, "priority")); p != "" {
		upd.Priority = &p
	}
	deadline, err := parseDeadline(args)
	if err != nil {
		return "", err
	}
	upd.Deadline = deadline

	goal, err := ledger.UpdateGoal(ctx, userID, stringArg(args, "name"), upd)
	if err != nil {
		return "", err
	}

	msg := fmt.Sprintf("Goal %q: %.2f of %.2f saved (%.0f%%).", goal.Name, goal.CurrentAmount, goal.TargetAmount, goal.Progress())
	if goal.Status == domain.GoalCompleted {
		msg += " Target reached, goal completed!"
	}
	return msg, nil
}

func listGoals(ctx context.Context, ledger *service.LedgerService, userID uuid.UUID) (string, error) {
	goals, err := ledger.ListGoals(ctx, userID, false)
	if err != nil {
		return "", err
	}
	if len(goals) == 0 {
		return "No goals yet.", nil
	}

	var b strings.Builder
	for _, g := range goals {
		fmt.Fprintf(&b, "%s [%s, %s]: %.2f of %.2f (%.0f%%)",
			g.Name, g.Status, g.Priority, g.CurrentAmount, g.TargetAmount, g.Progress())
		if g.Deadline != nil {
			fmt.Fprintf(&b, ", deadline %s", g.Deadline.Format("2006-01-02"))
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func parseDeadline(args map[string]any) (*time.Time, error) {
	d := stringArg(args, "deadline")
	if d == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", d)
	if err != nil {
		return nil, fmt.Errorf("%w: deadline must be YYYY-MM-DD", domain.ErrValidation)
	}
	return &t, nil
}

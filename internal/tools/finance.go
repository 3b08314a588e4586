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

// RegisterFinanceTools wires the ledger and advisory tools.
func RegisterFinanceTools(r *Registry, ledger *service.LedgerService, advisor *service.AdvisorService) {
	r.Register(Definition{
		Name:        "get_account_balance",
		Description: "Get the user's current account balance.",
		Parameters:  objectSchema(map[string]any{}, nil),
		Handler: func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
			snap, err := advisor.CachedStatus(ctx, userID)
			if err != nil {
				return "", err
			}
			if snap.IsNewUser {
				return "No balance recorded yet. Use set_account_balance to start.", nil
			}
			return fmt.Sprintf("Current balance: %.2f", snap.Balance), nil
		},
	})

	r.Register(Definition{
		Name:        "set_account_balance",
		Description: "Set the user's account balance to an exact value, starting a new baseline.",
		Parameters: objectSchema(map[string]any{
			"balance":  map[string]any{"type": "number", "description": "New balance value"},
			"currency": map[string]any{"type": "string", "description": "Currency code, defaults to CVE"},
		}, []string{"balance"}),
		Required: []string{"balance"},
		Handler: func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
			balance, ok := floatArg(args, "balance")
			if !ok {
				return "", fmt.Errorf("%w: balance must be a number", domain.ErrValidation)
			}
			rec, err := ledger.SetBalance(ctx, userID, balance, stringArg(args, "currency"))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Balance set to %.2f %s", rec.Balance, rec.Currency), nil
		},
	})

	r.Register(Definition{
		Name:        "add_transaction",
		Description: "Record an inflow or outflow. Outflows are checked against spending limits first.",
		Parameters: objectSchema(map[string]any{
			"description": map[string]any{"type": "string", "description": "What the money was for"},
			"amount":      map[string]any{"type": "number", "description": "Positive amount"},
			"kind":        map[string]any{"type": "string", "enum": []string{"inflow", "outflow"}},
			"category":    map[string]any{"type": "string", "description": "Spending category, e.g. food, rent, debt"},
			"date":        map[string]any{"type": "string", "description": "Date in YYYY-MM-DD, defaults to today"},
		}, []string{"description", "amount", "kind"}),
		Required: []string{"description", "amount", "kind"},
		Handler: func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
			amount, ok := floatArg(args, "amount")
			if !ok {
				return "", fmt.Errorf("%w: amount must be a number", domain.ErrValidation)
			}

			in := service.AddTransactionInput{
				Description: stringArg(args, "description"),
				Amount:      amount,
				Kind:        strings.ToLower(stringArg(args, "kind")),
				Category:    stringArg(args, "category"),
			}
			if d := stringArg(args, "date"); d != "" {
				t, err := time.Parse("2006-01-02", d)
				if err != nil {
					return "", fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrValidation)
				}
				in.Date = t
			}

			res, err := ledger.AddTransaction(ctx, userID, in)
			if err != nil {
				return "", err
			}

			msg := fmt.Sprintf("Recorded %s of %.2f (%s). New balance: %.2f",
				res.Transaction.Kind, res.Transaction.Amount, res.Transaction.Category, res.NewBalance)
			if len(res.Warnings) > 0 {
				msg += "\nWarning: " + strings.Join(res.Warnings, " ")
			}
			return msg, nil
		},
	})

	r.Register(Definition{
		Name:        "list_transactions",
		Description: "List the user's most recent transactions.",
		Parameters: objectSchema(map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Max entries, default 20"},
		}, nil),
		Handler: func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
			limit, _ := intArg(args, "limit")
			txns, err := ledger.ListTransactions(ctx, userID, limit)
			if err != nil {
				return "", err
			}
			if len(txns) == 0 {
				return "No transactions recorded yet.", nil
			}

			var b strings.Builder
			for _, t := range txns {
				sign := "+"
				if t.Kind == domain.KindOutflow {
					sign = "-"
				}
				fmt.Fprintf(&b, "%s | %s%.2f | %s | %s (balance %.2f)\n",
					t.Date.Format("2006-01-02"), sign, t.Amount, t.Category, t.Description, t.BalanceAfter)
			}
			return b.String(), nil
		},
	})

	r.Register(Definition{
		Name:        "analyze_finances",
		Description: "Compute the user's financial health: reserve coverage, savings rate, debt status and spending by category.",
		Parameters: objectSchema(map[string]any{
			"days": map[string]any{"type": "integer", "description": "Window for the category breakdown, default 30"},
		}, nil),
		Handler: func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
			snap, err := advisor.ComputeStatus(ctx, userID)
			if err != nil {
				return "", err
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Balance: %.2f\n", snap.Balance)
			fmt.Fprintf(&b, "Monthly expenses: %.2f", snap.MonthlyExpenses)
			if !snap.HasRecentData {
				b.WriteString(" (estimated, no recent spending history)")
			}
			b.WriteString("\n")
			fmt.Fprintf(&b, "Emergency reserve: %.2f (%.1f months of expenses)\n", snap.CurrentReserve, snap.ReserveMonths)
			fmt.Fprintf(&b, "Savings rate (30d): %.0f%%\n", snap.SavingsRate*100)
			if snap.HasDebt {
				b.WriteString("Debt payments detected in the last 90 days.\n")
			}

			days, _ := intArg(args, "days")
			cats, err := ledger.ExpenseByCategory(ctx, userID, days)
			if err != nil {
				return "", err
			}
			if len(cats) > 0 {
				b.WriteString("Spending by category:\n")
				for _, c := range cats {
					fmt.Fprintf(&b, "  %s: %.2f\n", c.Category, c.Total)
				}
			}
			return b.String(), nil
		},
	})

	r.Register(Definition{
		Name:        "check_purchase_viability",
		Description: "Check whether a planned purchase is financially sound. Reports every violated guardrail.",
		Parameters: objectSchema(map[string]any{
			"description": map[string]any{"type": "string", "description": "What the user wants to buy"},
			"amount":      map[string]any{"type": "number", "description": "Purchase amount"},
		}, []string{"description", "amount"}),
		Required: []string{"description", "amount"},
		Handler: func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
			amount, ok := floatArg(args, "amount")
			if !ok {
				return "", fmt.Errorf("%w: amount must be a number", domain.ErrValidation)
			}

			res, err := advisor.EvaluateViability(ctx, userID, stringArg(args, "description"), amount)
			if err != nil {
				return "", err
			}
			if res.Viable {
				return fmt.Sprintf("The purchase of %.2f looks viable. Reserve covers %.1f months of expenses.",
					amount, res.Snapshot.ReserveMonths), nil
			}
			return "Not recommended right now:\n- " + strings.Join(res.Warnings, "\n- "), nil
		},
	})

	r.Register(Definition{
		Name:        "set_spending_limit",
		Description: "Set a monthly budget for a category. Hard limits block transactions that would exceed them.",
		Parameters: objectSchema(map[string]any{
			"category":      map[string]any{"type": "string"},
			"monthly_limit": map[string]any{"type": "number"},
			"is_hard_limit": map[string]any{"type": "boolean", "description": "Block instead of warn, default false"},
		}, []string{"category", "monthly_limit"}),
		Required: []string{"category", "monthly_limit"},
		Handler: func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
			monthly, ok := floatArg(args, "monthly_limit")
			if !ok {
				return "", fmt.Errorf("%w: monthly_limit must be a number", domain.ErrValidation)
			}
			limit, err := ledger.SetSpendingLimit(ctx, userID, stringArg(args, "category"), monthly, boolArg(args, "is_hard_limit"))
			if err != nil {
				return "", err
			}
			kind := "soft"
			if limit.IsHardLimit {
				kind = "hard"
			}
			return fmt.Sprintf("Set %s limit of %.2f/month for %s", kind, limit.MonthlyLimit, limit.Category), nil
		},
	})

	r.Register(Definition{
		Name:        "get_spending_alerts",
		Description: "Check current-month spending against every configured budget.",
		Parameters:  objectSchema(map[string]any{}, nil),
		Handler: func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
			alerts, err := ledger.SpendingAlerts(ctx, userID)
			if err != nil {
				return "", err
			}
			if len(alerts) == 0 {
				return "All budgets are on track this month.", nil
			}

			var b strings.Builder
			for _, a := range alerts {
				switch a.Level {
				case "exceeded":
					fmt.Fprintf(&b, "%s budget EXCEEDED: %.2f of %.2f spent (%.0f%%)\n",
						a.Category, a.Spent, a.Limit, a.Ratio*100)
				default:
					fmt.Fprintf(&b, "%s budget nearly used: %.2f of %.2f spent (%.0f%%)\n",
						a.Category, a.Spent, a.Limit, a.Ratio*100)
				}
			}
			return b.String(), nil
		},
	})
}

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

// RegisterPortfolioTools wires portfolio tracking and investment
// suggestions.
func RegisterPortfolioTools(r *Registry, repo domain.PortfolioRepository, advisor *service.AdvisorService) {
	r.Register(Definition{
		Name:        "manage_portfolio",
		Description: "Track investment holdings. Actions: add, list, exposure.",
		Parameters: objectSchema(map[string]any{
			"action":         map[string]any{"type": "string", "enum": []string{"add", "list", "exposure"}},
			"asset_type":     map[string]any{"type": "string", "enum": []string{"crypto", "global", "local", "fixed_income"}},
			"symbol":         map[string]any{"type": "string"},
			"quantity":       map[string]any{"type": "number"},
			"purchase_price": map[string]any{"type": "number", "description": "Price per unit at purchase"},
		}, []string{"action"}),
		Required: []string{"action"},
		Handler: func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
			switch strings.ToLower(stringArg(args, "action")) {
			case "add":
				return addHolding(ctx, repo, userID, args)
			case "list":
				return listHoldings(ctx, repo, userID)
			case "exposure":
				return exposureReport(ctx, repo, advisor, userID)
			default:
				return "", fmt.Errorf("%w: unknown action %q", domain.ErrValidation, stringArg(args, "action"))
			}
		},
	})

	r.Register(Definition{
		Name:        "suggest_investments",
		Description: "Recommend a portfolio allocation for the user's risk profile and financial health.",
		Parameters:  objectSchema(map[string]any{}, nil),
		Handler: func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
			rec, err := advisor.RecommendAllocation(ctx, userID)
			if err != nil {
				return "", err
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Recommended profile: %s (%s)\n", rec.Profile, rec.Reason)
			if rec.Overridden {
				b.WriteString("Your situation calls for a safer allocation than your stated preference.\n")
			}
			for asset, pct := range rec.Allocation {
				fmt.Fprintf(&b, "  %s: %.0f%%\n", asset, pct)
			}
			return b.String(), nil
		},
	})
}

func addHolding(ctx context.Context, repo domain.PortfolioRepository, userID uuid.UUID, args map[string]any) (string, error) {
	assetType := strings.ToLower(stringArg(args, "asset_type"))
	switch assetType {
	case domain.AssetCrypto, domain.AssetGlobal, domain.AssetLocal, domain.AssetFixed:
	default:
		return "", fmt.Errorf("%w: asset_type must be crypto, global, local or fixed_income", domain.ErrValidation)
	}

	symbol := strings.ToUpper(strings.TrimSpace(stringArg(args, "symbol")))
	if symbol == "" {
		return "", fmt.Errorf("%w: symbol is required", domain.ErrValidation)
	}
	quantity, ok := floatArg(args, "quantity")
	if !ok || quantity <= 0 {
		return "", fmt.Errorf("%w: quantity must be a positive number", domain.ErrValidation)
	}
	price, ok := floatArg(args, "purchase_price")
	if !ok || price < 0 {
		return "", fmt.Errorf("%w: purchase_price must be a number", domain.ErrValidation)
	}

	now := time.Now().UTC()
	holding := &domain.PortfolioHolding{
		ID:            uuid.New(),
		UserID:        userID,
		AssetType:     assetType,
		Symbol:        symbol,
		Quantity:      quantity,
		PurchasePrice: price,
		PurchaseDate:  now,
		CreatedAt:     now,
	}
	if err := repo.Add(ctx, holding); err != nil {
		return "", err
	}
	return fmt.Sprintf("Added %g %s (%s) at %.2f per unit.", quantity, symbol, assetType, price), nil
}

func listHoldings(ctx context.Context, repo domain.PortfolioRepository, userID uuid.UUID) (string, error) {
	holdings, err := repo.List(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(holdings) == 0 {
		return "No holdings tracked yet.", nil
	}

	var b strings.Builder
	for _, h := range holdings {
		fmt.Fprintf(&b, "%s (%s): %g units, cost %.2f\n", h.Symbol, h.AssetType, h.Quantity, h.Cost())
	}
	return b.String(), nil
}

// exposureReport computes cost-basis exposure per asset class and
// validates it against the ceilings for the user's risk profile.
func exposureReport(ctx context.Context, repo domain.PortfolioRepository, advisor *service.AdvisorService, userID uuid.UUID) (string, error) {
	holdings, err := repo.List(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(holdings) == 0 {
		return "No holdings tracked yet.", nil
	}

	exposure := domain.ExposureSummary{}
	total := 0.0
	for _, h := range holdings {
		exposure[h.AssetType] += h.Cost()
		total += h.Cost()
	}
	if total == 0 {
		return "Portfolio has no cost basis recorded.", nil
	}

	snap, err := advisor.ComputeStatus(ctx, userID)
	if err != nil {
		return "", err
	}
	profile := snap.RiskProfile
	if profile == "" {
		profile = domain.ProfileModerate
	}

	var b strings.Builder
	for asset, cost := range exposure {
		fmt.Fprintf(&b, "%s: %.2f (%.0f%%)\n", asset, cost, cost/total*100)
	}

	violations := advisor.ValidateRiskLimits(profile,
		exposure[domain.AssetCrypto]/total,
		exposure[domain.AssetGlobal]/total)
	for _, v := range violations {
		b.WriteString("Warning: " + v + "\n")
	}
	return b.String(), nil
}

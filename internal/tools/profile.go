package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"financeagent/internal/domain"
)

// SnapshotInvalidator drops a user's cached health snapshot after a
// write that changes its inputs.
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID)
}

// RegisterProfileTools wires user preference management.
func RegisterProfileTools(r *Registry, prefRepo domain.PreferenceRepository, cache SnapshotInvalidator) {
	r.Register(Definition{
		Name:        "set_user_preference",
		Description: "Store a durable fact about the user, e.g. age, risk_profile, preferred currency or language.",
		Parameters: objectSchema(map[string]any{
			"key":   map[string]any{"type": "string", "description": "Preference key, e.g. age, risk_profile"},
			"value": map[string]any{"type": "string"},
		}, []string{"key", "value"}),
		Required: []string{"key", "value"},
		Handler: func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
			key := strings.ToLower(strings.TrimSpace(stringArg(args, "key")))
			value := strings.TrimSpace(stringArg(args, "value"))
			if key == "" || value == "" {
				return "", fmt.Errorf("%w: key and value are required", domain.ErrValidation)
			}

			if key == domain.PrefRiskProfile {
				switch strings.ToLower(value) {
				case domain.ProfileConservative, domain.ProfileModerate, domain.ProfileAggressive:
					value = strings.ToLower(value)
				default:
					return "", fmt.Errorf("%w: risk_profile must be conservative, moderate or aggressive", domain.ErrValidation)
				}
			}

			pref := &domain.Preference{
				UserID:    userID,
				Key:       key,
				Value:     value,
				UpdatedAt: time.Now().UTC(),
			}
			if err := prefRepo.Set(ctx, pref); err != nil {
				return "", err
			}

			// Age and risk profile feed the health snapshot, so the
			// cached copy is stale the moment a preference changes.
			cache.Invalidate(ctx, userID)

			return fmt.Sprintf("Remembered: %s = %s", key, value), nil
		},
	})

	r.Register(Definition{
		Name:        "get_user_profile",
		Description: "Read everything stored about the user's preferences.",
		Parameters:  objectSchema(map[string]any{}, nil),
		Handler: func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
			prefs, err := prefRepo.GetAll(ctx, userID)
			if err != nil {
				return "", err
			}
			if len(prefs) == 0 {
				return "No preferences stored yet.", nil
			}

			var b strings.Builder
			for _, p := range prefs {
				fmt.Fprintf(&b, "%s: %s\n", p.Key, p.Value)
			}
			return b.String(), nil
		},
	})
}

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"financeagent/internal/domain"
)

// RegisterUtilityTools wires the calculator, web search and clock.
func RegisterUtilityTools(r *Registry) {
	searchClient := &http.Client{Timeout: 15 * time.Second}

	r.Register(Definition{
		Name:        "calculate",
		Description: "Evaluate an arithmetic expression with + - * / % ^ and parentheses.",
		Parameters: objectSchema(map[string]any{
			"expression": map[string]any{"type": "string", "description": "e.g. (2500 * 0.3) + 150"},
		}, []string{"expression"}),
		Required: []string{"expression"},
		Handler: func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
			expr := stringArg(args, "expression")
			result, err := evalExpression(expr)
			if err != nil {
				return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
			}
			return fmt.Sprintf("%s = %g", strings.TrimSpace(expr), result), nil
		},
	})

	r.Register(Definition{
		Name:        "web_search",
		Description: "Search the web for a quick factual answer.",
		Parameters: objectSchema(map[string]any{
			"query": map[string]any{"type": "string"},
		}, []string{"query"}),
		Required: []string{"query"},
		Handler: func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
			query := strings.TrimSpace(stringArg(args, "query"))
			if query == "" {
				return "", fmt.Errorf("%w: query is required", domain.ErrValidation)
			}
			return duckDuckGoAnswer(ctx, searchClient, query)
		},
	})

	r.Register(Definition{
		Name:        "get_now",
		Description: "Get the current date and time.",
		Parameters:  objectSchema(map[string]any{}, nil),
		Handler: func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error) {
			return time.Now().UTC().Format("Monday, 2006-01-02 15:04 MST"), nil
		},
	})
}

// duckDuckGoAnswer queries the DuckDuckGo instant answer API.
func duckDuckGoAnswer(ctx context.Context, client *http.Client, query string) (string, error) {
	u := "https://api.duckduckgo.com/?format=json&no_html=1&q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call search API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search API returned error: status=%d", resp.StatusCode)
	}

	var payload struct {
		AbstractText  string `json:"AbstractText"`
		Answer        string `json:"Answer"`
		RelatedTopics []struct {
			Text string `json:"Text"`
		} `json:"RelatedTopics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	switch {
	case payload.Answer != "":
		return payload.Answer, nil
	case payload.AbstractText != "":
		return payload.AbstractText, nil
	case len(payload.RelatedTopics) > 0 && payload.RelatedTopics[0].Text != "":
		return payload.RelatedTopics[0].Text, nil
	}
	return "No results found for: " + query, nil
}

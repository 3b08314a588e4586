package tools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"financeagent/internal/domain"
)

// Handler executes one tool call for a user and returns a plain-text
// result for the model.
type Handler func(ctx context.Context, userID uuid.UUID, args map[string]any) (string, error)

// Definition declares a tool: its schema for the model and its handler.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]any
	Required    []string
	Handler     Handler
}

// Registry is the closed set of tools the model may call. Anything
// outside it is rejected before any handler runs.
type Registry struct {
	defs  map[string]Definition
	order []string
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

func (r *Registry) Register(def Definition) {
	if _, exists := r.defs[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.defs[def.Name] = def
}

// Definitions returns the tool schemas in registration order.
func (r *Registry) Definitions() []domain.ToolDef {
	out := make([]domain.ToolDef, 0, len(r.order))
	for _, name := range r.order {
		def := r.defs[name]
		out = append(out, domain.ToolDef{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  def.Parameters,
		})
	}
	return out
}

// Execute validates and dispatches one tool call.
func (r *Registry) Execute(ctx context.Context, userID uuid.UUID, name string, args map[string]any) (string, error) {
	def, ok := r.defs[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownTool, name)
	}

	if args == nil {
		args = map[string]any{}
	}
	for _, req := range def.Required {
		if _, ok := args[req]; !ok {
			return "", fmt.Errorf("%w: %s requires argument %q", domain.ErrValidation, name, req)
		}
	}

	return def.Handler(ctx, userID, args)
}

// objectSchema builds a JSON-schema object for tool parameters.
func objectSchema(props map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// floatArg accepts JSON numbers and numeric strings, since models are
// inconsistent about which they send.
func floatArg(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func intArg(args map[string]any, key string) (int, bool) {
	if f, ok := floatArg(args, key); ok {
		return int(f), true
	}
	return 0, false
}

func boolArg(args map[string]any, key string) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

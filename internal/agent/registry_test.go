package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/haasonsaas/medassist/pkg/models"
)

// fakeTool is a configurable Tool for registry tests.
type fakeTool struct {
	name    string
	schema  string
	execute func(ctx context.Context, params json.RawMessage) (*ToolResult, error)
}

func (f *fakeTool) Name() string            { return f.name }
func (f *fakeTool) Description() string     { return "test tool" }
func (f *fakeTool) Schema() json.RawMessage { return json.RawMessage(f.schema) }

func (f *fakeTool) Execute(ctx context.Context, params json.RawMessage) (*ToolResult, error) {
	if f.execute == nil {
		return &ToolResult{Content: "ok"}, nil
	}
	return f.execute(ctx, params)
}

const simpleSchema = `{
	"type": "object",
	"properties": {
		"query": {"type": "string"}
	},
	"required": ["query"]
}`

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	_, err := NewToolRegistry(
		&fakeTool{name: "search", schema: simpleSchema},
		&fakeTool{name: "search", schema: simpleSchema},
	)
	if err == nil {
		t.Fatal("expected error for duplicate tool name")
	}
}

func TestRegistryRejectsBadSchema(t *testing.T) {
	_, err := NewToolRegistry(&fakeTool{name: "broken", schema: `{"type": 12}`})
	if err == nil {
		t.Fatal("expected error for malformed schema")
	}
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	registry, err := NewToolRegistry(
		&fakeTool{name: "c", schema: simpleSchema},
		&fakeTool{name: "a", schema: simpleSchema},
		&fakeTool{name: "b", schema: simpleSchema},
	)
	if err != nil {
		t.Fatalf("NewToolRegistry: %v", err)
	}

	tools := registry.Tools()
	want := []string{"c", "a", "b"}
	for i, tool := range tools {
		if tool.Name() != want[i] {
			t.Errorf("tools[%d] = %q, want %q", i, tool.Name(), want[i])
		}
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	registry, _ := NewToolRegistry(&fakeTool{name: "search", schema: simpleSchema})

	result := registry.Dispatch(context.Background(), models.ToolCall{
		ID:    "call-1",
		Name:  "nonexistent",
		Input: json.RawMessage(`{}`),
	})

	if !result.IsError {
		t.Fatal("expected error result for unknown tool")
	}
	if !strings.Contains(result.Content, "nonexistent") {
		t.Errorf("result content %q does not name the missing tool", result.Content)
	}
	if result.ToolCallID != "call-1" {
		t.Errorf("ToolCallID = %q, want call-1", result.ToolCallID)
	}
}

func TestDispatchInvalidArguments(t *testing.T) {
	registry, _ := NewToolRegistry(&fakeTool{name: "search", schema: simpleSchema})

	result := registry.Dispatch(context.Background(), models.ToolCall{
		Name:  "search",
		Input: json.RawMessage(`{"query": 42}`),
	})
	if !result.IsError {
		t.Fatal("expected error result for type-mismatched argument")
	}

	result = registry.Dispatch(context.Background(), models.ToolCall{
		Name:  "search",
		Input: json.RawMessage(`{}`),
	})
	if !result.IsError {
		t.Fatal("expected error result for missing required argument")
	}
}

func TestDispatchAppliesDefaults(t *testing.T) {
	var captured map[string]any
	tool := &fakeTool{
		name: "paged",
		schema: `{
			"type": "object",
			"properties": {
				"phone": {"type": "string"},
				"page": {"type": "integer", "default": 1},
				"limit": {"type": "integer", "default": 10}
			},
			"required": ["phone"]
		}`,
		execute: func(_ context.Context, params json.RawMessage) (*ToolResult, error) {
			if err := json.Unmarshal(params, &captured); err != nil {
				return nil, err
			}
			return &ToolResult{Content: "ok"}, nil
		},
	}
	registry, _ := NewToolRegistry(tool)

	result := registry.Dispatch(context.Background(), models.ToolCall{
		Name:  "paged",
		Input: json.RawMessage(`{"phone": "555"}`),
	})
	if result.IsError {
		t.Fatalf("unexpected error result: %s", result.Content)
	}
	if captured["page"] != float64(1) || captured["limit"] != float64(10) {
		t.Errorf("defaults not applied: %+v", captured)
	}
}

func TestDispatchClampsNumericBounds(t *testing.T) {
	var captured map[string]any
	tool := &fakeTool{
		name: "paged",
		schema: `{
			"type": "object",
			"properties": {
				"limit": {"type": "number", "minimum": 1, "maximum": 50}
			}
		}`,
		execute: func(_ context.Context, params json.RawMessage) (*ToolResult, error) {
			if err := json.Unmarshal(params, &captured); err != nil {
				return nil, err
			}
			return &ToolResult{Content: "ok"}, nil
		},
	}
	registry, _ := NewToolRegistry(tool)

	result := registry.Dispatch(context.Background(), models.ToolCall{
		Name:  "paged",
		Input: json.RawMessage(`{"limit": 999}`),
	})
	if result.IsError {
		t.Fatalf("unexpected error result: %s", result.Content)
	}
	if captured["limit"] != float64(50) {
		t.Errorf("limit = %v, want clamped to 50", captured["limit"])
	}

	registry.Dispatch(context.Background(), models.ToolCall{
		Name:  "paged",
		Input: json.RawMessage(`{"limit": 0}`),
	})
	if captured["limit"] != float64(1) {
		t.Errorf("limit = %v, want clamped to 1", captured["limit"])
	}
}

func TestDispatchExecutionErrorBecomesResult(t *testing.T) {
	tool := &fakeTool{
		name:   "failing",
		schema: simpleSchema,
		execute: func(context.Context, json.RawMessage) (*ToolResult, error) {
			return nil, errors.New("backend exploded")
		},
	}
	registry, _ := NewToolRegistry(tool)

	result := registry.Dispatch(context.Background(), models.ToolCall{
		Name:  "failing",
		Input: json.RawMessage(`{"query": "x"}`),
	})
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if !strings.Contains(result.Content, "backend exploded") {
		t.Errorf("result content %q missing cause", result.Content)
	}
}

func TestDispatchRecoversFromPanic(t *testing.T) {
	tool := &fakeTool{
		name:   "panicky",
		schema: simpleSchema,
		execute: func(context.Context, json.RawMessage) (*ToolResult, error) {
			panic("boom")
		},
	}
	registry, _ := NewToolRegistry(tool)

	result := registry.Dispatch(context.Background(), models.ToolCall{
		Name:  "panicky",
		Input: json.RawMessage(`{"query": "x"}`),
	})
	if !result.IsError {
		t.Fatal("expected error result after panic")
	}
	if !strings.Contains(result.Content, "boom") {
		t.Errorf("result content %q missing panic value", result.Content)
	}
}

func TestDispatchErrorFlaggedToolResult(t *testing.T) {
	tool := &fakeTool{
		name:   "remote",
		schema: simpleSchema,
		execute: func(context.Context, json.RawMessage) (*ToolResult, error) {
			return &ToolResult{Content: "API error 500", IsError: true}, nil
		},
	}
	registry, _ := NewToolRegistry(tool)

	result := registry.Dispatch(context.Background(), models.ToolCall{
		Name:  "remote",
		Input: json.RawMessage(`{"query": "x"}`),
	})
	if !result.IsError {
		t.Fatal("IsError flag not propagated")
	}
	if result.Content != "API error 500" {
		t.Errorf("Content = %q", result.Content)
	}
}

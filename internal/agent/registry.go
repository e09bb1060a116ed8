package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/haasonsaas/medassist/pkg/models"
)

// ToolRegistry holds the closed set of actions the model may invoke. The set
// is fixed at construction; every declared schema is compiled up front so a
// malformed tool definition fails at startup rather than mid-conversation.
type ToolRegistry struct {
	order []string
	tools map[string]registeredTool
}

type registeredTool struct {
	tool     Tool
	compiled *jsonschema.Schema
	raw      map[string]any
}

// NewToolRegistry builds a registry from the given tools. It fails on
// duplicate names and on schemas that do not compile as JSON Schema.
func NewToolRegistry(tools ...Tool) (*ToolRegistry, error) {
	r := &ToolRegistry{tools: make(map[string]registeredTool, len(tools))}
	for _, tool := range tools {
		name := tool.Name()
		if _, exists := r.tools[name]; exists {
			return nil, fmt.Errorf("duplicate tool %q", name)
		}

		schema := tool.Schema()
		compiled, err := jsonschema.CompileString(name+".schema.json", string(schema))
		if err != nil {
			return nil, fmt.Errorf("compile schema for tool %q: %w", name, err)
		}

		var raw map[string]any
		if err := json.Unmarshal(schema, &raw); err != nil {
			return nil, fmt.Errorf("decode schema for tool %q: %w", name, err)
		}

		r.order = append(r.order, name)
		r.tools[name] = registeredTool{tool: tool, compiled: compiled, raw: raw}
	}
	return r, nil
}

// Tools returns the registered tools in registration order, for attaching
// their schemas to a model call.
func (r *ToolRegistry) Tools() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].tool)
	}
	return out
}

// Get returns a tool by name.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	entry, ok := r.tools[name]
	return entry.tool, ok
}

// Dispatch executes one tool invocation request and always produces a
// textual result: unknown tools, invalid arguments, and execution failures
// are reported as error-flagged results, never as Go errors. The model must
// receive some result text for every request it made.
func (r *ToolRegistry) Dispatch(ctx context.Context, call models.ToolCall) models.ToolResult {
	result := r.dispatch(ctx, call)
	countDispatch(call.Name, result.IsError)
	return result
}

func (r *ToolRegistry) dispatch(ctx context.Context, call models.ToolCall) models.ToolResult {
	entry, ok := r.tools[call.Name]
	if !ok {
		return errorResult(call, fmt.Sprintf("Requested tool %q is not available.", call.Name))
	}

	args := map[string]any{}
	if len(call.Input) > 0 {
		if err := json.Unmarshal(call.Input, &args); err != nil {
			return errorResult(call, fmt.Sprintf("Tool %q received malformed arguments: %v", call.Name, err))
		}
	}

	applyDefaults(entry.raw, args)
	clampBounds(entry.raw, args)

	if err := entry.compiled.Validate(map[string]any(args)); err != nil {
		return errorResult(call, fmt.Sprintf("Tool %q arguments are invalid: %v", call.Name, err))
	}

	params, err := json.Marshal(args)
	if err != nil {
		return errorResult(call, fmt.Sprintf("Tool %q arguments could not be encoded: %v", call.Name, err))
	}

	result, err := safeExecute(ctx, entry.tool, params)
	if err != nil {
		return errorResult(call, fmt.Sprintf("Tool %q failed: %v", call.Name, err))
	}

	return models.ToolResult{
		ToolCallID: call.ID,
		Name:       call.Name,
		Content:    result.Content,
		IsError:    result.IsError,
	}
}

// safeExecute shields the loop from panicking tools.
func safeExecute(ctx context.Context, tool Tool, params json.RawMessage) (result *ToolResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	result, err = tool.Execute(ctx, params)
	if err == nil && result == nil {
		err = fmt.Errorf("tool returned no result")
	}
	return result, err
}

// applyDefaults fills absent arguments from the schema's "default" values.
func applyDefaults(schema map[string]any, args map[string]any) {
	for name, prop := range properties(schema) {
		if _, present := args[name]; present {
			continue
		}
		if def, ok := prop["default"]; ok {
			args[name] = def
		}
	}
}

// clampBounds forces numeric arguments into their declared
// [minimum, maximum] range. Out-of-range values from the model are clamped
// rather than rejected so the conversation keeps flowing.
func clampBounds(schema map[string]any, args map[string]any) {
	for name, prop := range properties(schema) {
		value, ok := args[name].(float64)
		if !ok {
			continue
		}
		if minVal, ok := prop["minimum"].(float64); ok && value < minVal {
			value = minVal
		}
		if maxVal, ok := prop["maximum"].(float64); ok && value > maxVal {
			value = maxVal
		}
		args[name] = value
	}
}

func properties(schema map[string]any) map[string]map[string]any {
	props, _ := schema["properties"].(map[string]any)
	out := make(map[string]map[string]any, len(props))
	for name, raw := range props {
		if prop, ok := raw.(map[string]any); ok {
			out[name] = prop
		}
	}
	return out
}

func errorResult(call models.ToolCall, content string) models.ToolResult {
	return models.ToolResult{
		ToolCallID: call.ID,
		Name:       call.Name,
		Content:    content,
		IsError:    true,
	}
}

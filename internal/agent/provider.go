package agent

import (
	"context"
	"encoding/json"

	"github.com/haasonsaas/medassist/pkg/models"
)

// ModelClient is the interface to a language-model backend capable of tool
// calling.
//
// Implementations must be safe for concurrent use; multiple goroutines may
// call Complete simultaneously for independent requests.
type ModelClient interface {
	// Complete sends the assembled conversation and returns the model's
	// turn: either plain text, or one or more tool invocation requests.
	// When req.Tools is empty the model must return plain text only.
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)

	// Name returns the provider name used in logs.
	Name() string
}

// CompletionRequest contains all parameters for a single model call.
type CompletionRequest struct {
	// System is the fixed instruction that sets the assistant's behavior.
	// It is carried separately from Messages; providers attach it in
	// whatever way their API requires.
	System string

	// Messages is the conversation context in chronological order.
	Messages []CompletionMessage

	// Tools declares the actions the model may request. Nil forces a
	// text-only answer.
	Tools []Tool

	// Temperature controls sampling; zero means provider default.
	Temperature float32
}

// CompletionMessage is a single message in the assembled context.
// Role values: "user", "assistant", "tool".
type CompletionMessage struct {
	Role        string
	Content     string
	ToolCalls   []models.ToolCall
	ToolResults []models.ToolResult
}

// Completion is the model's response to one call. ToolCalls is empty when
// the model answered with plain text.
type Completion struct {
	Text      string
	ToolCalls []models.ToolCall
}

// Tool is an executable action the model may request.
type Tool interface {
	// Name returns the unique tool identifier used in function calling.
	Name() string

	// Description tells the model when to use the tool.
	Description() string

	// Schema returns the JSON Schema for the tool's parameters.
	Schema() json.RawMessage

	// Execute runs the tool with schema-conforming JSON parameters.
	// Remote failures are reported through ToolResult.IsError rather than
	// the error return whenever a human-readable summary is available.
	Execute(ctx context.Context, params json.RawMessage) (*ToolResult, error)
}

// ToolResult is the output of one tool execution as produced by the tool
// itself; the registry converts it to models.ToolResult for the context.
type ToolResult struct {
	Content string
	IsError bool
}

package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/haasonsaas/medassist/internal/agent"
	"github.com/haasonsaas/medassist/pkg/models"
)

// DefaultModel is used when GeminiConfig.Model is empty.
const DefaultModel = "gemini-2.5-flash"

// GeminiClient implements agent.ModelClient against Google's Gemini API.
//
// It converts the loop's unified message format into Gemini contents, sends a
// single non-streaming GenerateContent request with retries for transient
// failures, and maps function calls in the response back into tool calls.
//
// GeminiClient is safe for concurrent use.
type GeminiClient struct {
	client *genai.Client
	model  string
	base   BaseProvider
}

// GeminiConfig holds configuration for creating a GeminiClient. All fields
// except APIKey are optional.
type GeminiConfig struct {
	// APIKey is the Google AI API authentication key (required).
	APIKey string

	// Model overrides DefaultModel.
	Model string

	// MaxRetries sets the maximum attempts for transient failures. Default: 3.
	MaxRetries int

	// RetryDelay is the base delay between attempts, scaled linearly.
	// Default: 1 second.
	RetryDelay time.Duration
}

// NewGeminiClient validates the configuration and initializes the underlying
// SDK client.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  cfg.Model,
		base:   NewBaseProvider("gemini", cfg.MaxRetries, cfg.RetryDelay),
	}, nil
}

// Name returns the provider identifier used in logging.
func (c *GeminiClient) Name() string {
	return "gemini"
}

// Model returns the configured model identifier.
func (c *GeminiClient) Model() string {
	return c.model
}

// Complete sends one generation request and returns the model's text and any
// requested tool calls.
func (c *GeminiClient) Complete(ctx context.Context, req *agent.CompletionRequest) (*agent.Completion, error) {
	contents := convertMessages(req.Messages)
	config := c.buildConfig(req)

	var resp *genai.GenerateContentResponse
	err := c.base.Retry(ctx, IsRetryable, func() error {
		var callErr error
		resp, callErr = c.client.Models.GenerateContent(ctx, c.model, contents, config)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	return extractCompletion(resp), nil
}

// convertMessages maps the loop's messages into Gemini contents. System
// messages are skipped since the instruction travels in the request config;
// tool results are sent from the user side, as the API requires.
func convertMessages(messages []agent.CompletionMessage) []*genai.Content {
	var result []*genai.Content

	for _, msg := range messages {
		if msg.Role == "system" {
			continue
		}

		content := &genai.Content{}
		switch msg.Role {
		case "assistant":
			content.Role = genai.RoleModel
		default:
			content.Role = genai.RoleUser
		}

		if msg.Content != "" {
			content.Parts = append(content.Parts, &genai.Part{Text: msg.Content})
		}

		for _, tc := range msg.ToolCalls {
			var args map[string]any
			if err := json.Unmarshal(tc.Input, &args); err != nil {
				args = make(map[string]any)
			}
			content.Parts = append(content.Parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					Name: tc.Name,
					Args: args,
				},
			})
		}

		for _, tr := range msg.ToolResults {
			var response map[string]any
			if err := json.Unmarshal([]byte(tr.Content), &response); err != nil {
				response = map[string]any{
					"result": tr.Content,
					"error":  tr.IsError,
				}
			}
			content.Parts = append(content.Parts, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					Name:     tr.Name,
					Response: response,
				},
			})
		}

		if len(content.Parts) > 0 {
			result = append(result, content)
		}
	}

	return result
}

func (c *GeminiClient) buildConfig(req *agent.CompletionRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(req.Temperature)
	}

	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	if len(req.Tools) > 0 {
		config.Tools = toGeminiTools(req.Tools)
	}

	return config
}

// toGeminiTools converts tool definitions to Gemini function declarations.
// Tools with an unparseable schema are skipped.
func toGeminiTools(tools []agent.Tool) []*genai.Tool {
	declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		var schemaMap map[string]any
		if err := json.Unmarshal(tool.Schema(), &schemaMap); err != nil {
			continue
		}
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  toGeminiSchema(schemaMap),
		})
	}
	if len(declarations) == 0 {
		return nil
	}
	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

// toGeminiSchema converts a JSON Schema map to Gemini's Schema type.
func toGeminiSchema(schemaMap map[string]any) *genai.Schema {
	if schemaMap == nil {
		return nil
	}

	schema := &genai.Schema{}

	if t, ok := schemaMap["type"].(string); ok {
		schema.Type = genai.Type(strings.ToUpper(t))
	}

	if desc, ok := schemaMap["description"].(string); ok {
		schema.Description = desc
	}

	if enum, ok := schemaMap["enum"].([]any); ok {
		for _, e := range enum {
			if s, ok := e.(string); ok {
				schema.Enum = append(schema.Enum, s)
			}
		}
	}

	if minimum, ok := schemaMap["minimum"].(float64); ok {
		schema.Minimum = genai.Ptr(minimum)
	}
	if maximum, ok := schemaMap["maximum"].(float64); ok {
		schema.Maximum = genai.Ptr(maximum)
	}

	if props, ok := schemaMap["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema)
		for name, prop := range props {
			if propMap, ok := prop.(map[string]any); ok {
				schema.Properties[name] = toGeminiSchema(propMap)
			}
		}
	}

	if required, ok := schemaMap["required"].([]any); ok {
		for _, r := range required {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}

	if items, ok := schemaMap["items"].(map[string]any); ok {
		schema.Items = toGeminiSchema(items)
	}

	return schema
}

// extractCompletion flattens the response candidates into text plus tool
// calls. Gemini does not assign call IDs, so we generate them.
func extractCompletion(resp *genai.GenerateContentResponse) *agent.Completion {
	completion := &agent.Completion{}
	if resp == nil {
		return completion
	}

	var text strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			if part.Text != "" {
				text.WriteString(part.Text)
			}
			if part.FunctionCall != nil {
				argsJSON, err := json.Marshal(part.FunctionCall.Args)
				if err != nil {
					argsJSON = []byte("{}")
				}
				completion.ToolCalls = append(completion.ToolCalls, models.ToolCall{
					ID:    generateToolCallID(part.FunctionCall.Name),
					Name:  part.FunctionCall.Name,
					Input: argsJSON,
				})
			}
		}
	}

	completion.Text = text.String()
	return completion
}

func generateToolCallID(name string) string {
	return fmt.Sprintf("call_%s_%s", name, uuid.NewString())
}

// Package agent implements the conversation orchestration core: the model
// client and tool contracts, the schema-validated tool registry, and the
// bounded tool-calling loop that turns a user message plus recent history
// into a final reply.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/haasonsaas/medassist/internal/memory"
	"github.com/haasonsaas/medassist/pkg/models"
)

// SystemPrompt is the fixed front-desk instruction sent with every model
// call. Inbound system-role turns are dropped so this remains the only
// system message in any context.
const SystemPrompt = "You are MedAssist, a hospital front desk assistant. " +
	"Greet patients warmly, gather intent, and answer questions using only the " +
	"provided information. Confirm doctor, patient, and timing before booking. " +
	"If details are missing, ask focused follow-up questions. " +
	"Always verify doctor availability with the search tool before promising an appointment. " +
	"If the search tool does not return the requested doctor, explain that they are unavailable " +
	"and offer alternatives such as searching other specialists. Respond in the same language " +
	"the patient uses, and when the patient writes in Hindi or Marathi, answer using Devanagari script. " +
	"Keep responses concise, empathetic, and professional."

const (
	// DefaultConversationID is the reserved identifier used when the
	// caller supplies neither an identifier nor inline history.
	DefaultConversationID = "_default_session"

	// maxToolIterations caps model round-trips that may request tools.
	maxToolIterations = 3
)

// LoopConfig configures the orchestration loop.
type LoopConfig struct {
	// SystemPrompt overrides the fixed instruction. Default: SystemPrompt.
	SystemPrompt string

	// Temperature is passed through to every model call.
	Temperature float32

	// MaxHistory bounds how many stored turns enter a context.
	// Default: memory.DefaultCapacity.
	MaxHistory int

	// Logger receives per-iteration debug logging. Default: slog.Default.
	Logger *slog.Logger
}

// Loop runs the bounded tool-calling conversation state machine. One Loop is
// constructed at startup and shared across requests; each Reply call is
// independent and safe to run concurrently with others.
type Loop struct {
	client      ModelClient
	registry    *ToolRegistry
	store       *memory.Store
	system      string
	temperature float32
	maxHistory  int
	logger      *slog.Logger
}

// NewLoop creates a loop with the given model client, tool registry, and
// history store. A nil config uses defaults.
func NewLoop(client ModelClient, registry *ToolRegistry, store *memory.Store, cfg *LoopConfig) *Loop {
	if cfg == nil {
		cfg = &LoopConfig{}
	}
	system := cfg.SystemPrompt
	if system == "" {
		system = SystemPrompt
	}
	maxHistory := cfg.MaxHistory
	if maxHistory <= 0 {
		maxHistory = memory.DefaultCapacity
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		client:      client,
		registry:    registry,
		store:       store,
		system:      system,
		temperature: cfg.Temperature,
		maxHistory:  maxHistory,
		logger:      logger,
	}
}

// Reply generates the assistant response for one user message.
//
// Conversation identity is resolved as follows: an explicit conversationID is
// used as-is; absent an identifier and inline history the reserved default
// session is used; absent an identifier but with inline history the request
// is ephemeral and nothing is persisted.
func (l *Loop) Reply(ctx context.Context, userMessage string, history []models.Turn, conversationID string) (string, error) {
	if l.client == nil {
		return "", ErrNoModelClient
	}
	if userMessage == "" {
		return "", ErrEmptyMessage
	}

	effectiveID := conversationID
	if effectiveID == "" && len(history) == 0 {
		effectiveID = DefaultConversationID
	}

	source := history
	if effectiveID != "" {
		// Caller-supplied history resyncs the stored window before the
		// authoritative read-back.
		if len(history) > 0 {
			l.store.Replace(effectiveID, history)
		}
		source = l.store.Get(effectiveID)
	}

	messages := l.buildContext(source, userMessage)

	var replyText string
	var answered bool
	for iteration := 0; iteration < maxToolIterations; iteration++ {
		completion, err := l.client.Complete(ctx, &CompletionRequest{
			System:      l.system,
			Messages:    messages,
			Tools:       l.registry.Tools(),
			Temperature: l.temperature,
		})
		if err != nil {
			return "", fmt.Errorf("model completion: %w", err)
		}

		if len(completion.ToolCalls) == 0 {
			replyText = completion.Text
			answered = true
			break
		}

		messages = append(messages, CompletionMessage{
			Role:      "assistant",
			Content:   completion.Text,
			ToolCalls: completion.ToolCalls,
		})

		// Execute every requested call before the next model round trip,
		// in the order received. Dispatch never fails out of the loop.
		results := make([]models.ToolResult, 0, len(completion.ToolCalls))
		for _, call := range completion.ToolCalls {
			result := l.registry.Dispatch(ctx, call)
			l.logger.Debug("tool dispatched",
				"tool", call.Name,
				"iteration", iteration,
				"is_error", result.IsError,
			)
			results = append(results, result)
		}
		messages = append(messages, CompletionMessage{
			Role:        "tool",
			ToolResults: results,
		})
	}

	if !answered {
		// Iteration cap exhausted: one final call without tool schemas
		// forces a text answer and guarantees termination.
		completion, err := l.client.Complete(ctx, &CompletionRequest{
			System:      l.system,
			Messages:    messages,
			Temperature: l.temperature,
		})
		if err != nil {
			return "", fmt.Errorf("model completion: %w", err)
		}
		replyText = completion.Text
	}

	if effectiveID != "" {
		l.store.Append(effectiveID,
			models.Turn{Role: models.RoleUser, Content: userMessage},
			models.Turn{Role: models.RoleAssistant, Content: replyText},
		)
	}

	return replyText, nil
}

// buildContext maps the trimmed history plus the new user message into model
// messages. Inbound system-role turns are dropped; only user and assistant
// turns are carried.
func (l *Loop) buildContext(history []models.Turn, userMessage string) []CompletionMessage {
	if len(history) > l.maxHistory {
		history = history[len(history)-l.maxHistory:]
	}

	messages := make([]CompletionMessage, 0, len(history)+1)
	for _, turn := range history {
		switch turn.Role {
		case models.RoleUser, models.RoleAssistant:
			messages = append(messages, CompletionMessage{
				Role:    string(turn.Role),
				Content: turn.Content,
			})
		}
	}
	return append(messages, CompletionMessage{Role: "user", Content: userMessage})
}

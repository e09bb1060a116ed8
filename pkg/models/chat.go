// Package models defines the wire-level types shared across the MedAssist
// service: conversation turns, tool calls and results, and the chat
// request/response payloads.
package models

import "encoding/json"

// Role indicates the turn author type.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is a single message in a conversation. Immutable once created.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ToolCall represents the model's request to execute a tool.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolResult is the output of a tool execution, fed back into the in-flight
// conversation context. Tool results are never written to the history store.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
}

// ChatRequest is the incoming payload for a chat completion.
type ChatRequest struct {
	// UserMessage is the new user input that needs a reply.
	UserMessage string `json:"user_message"`

	// History optionally carries prior conversation turns to maintain
	// context. When supplied together with ConversationID it replaces the
	// server-side window for that conversation.
	History []Turn `json:"history,omitempty"`

	// ConversationID enables the server to retain up to five prior turns
	// across requests. When absent and no history is supplied, a shared
	// default session is used.
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the payload corresponding to the assistant reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// Package api defines the data-workspace backend's conversation types and a
// client for its HTTP API. The backend owns persistence; everything here is
// a wire shape, not a storage model.
package api

import "time"

// Session status values reported by the backend.
const (
	SessionStatusActive = "active"
	SessionStatusIdle   = "idle"
	SessionStatusError  = "error"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Event types emitted by an agent run.
const (
	EventTypeReasoning = "reasoning"
	EventTypeTool      = "tool"
	EventTypeMessage   = "message"
	EventTypeRun       = "run"
)

// Event subtypes.
const (
	SubtypeStart = "start"
	SubtypeEnd   = "end"
	SubtypeError = "error"
	SubtypeFinal = "final"
)

// SessionSummary is one row of the workspace's conversation list.
type SessionSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Preview   string    `json:"preview,omitempty"`
	ProjectID string    `json:"project_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a persisted conversation message. Content may be a plain string,
// a JSON-encoded string, or a nested block structure depending on which agent
// produced it; use chat.ExtractText to get displayable text.
//
// RunID is empty only for legacy messages created before run grouping
// existed; such messages render as their own single-message turn.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   any       `json:"content"`
	Seq       int       `json:"seq"`
	RunID     string    `json:"run_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StreamEvent is one event from an agent run, either replayed from storage
// alongside a session's messages or delivered live over the event stream.
// The run id lives in Metadata under "run_id"; it is the join key that
// attaches an event to a turn.
type StreamEvent struct {
	Type      string         `json:"type"`
	Subtype   string         `json:"subtype,omitempty"`
	Content   any            `json:"content,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// RunID returns the run id from the event metadata, or "" if absent.
func (e StreamEvent) RunID() string {
	if e.Metadata == nil {
		return ""
	}
	if id, ok := e.Metadata["run_id"].(string); ok {
		return id
	}
	return ""
}

// ToolName returns the tool name from the event metadata, or "" if absent.
func (e StreamEvent) ToolName() string {
	if e.Metadata == nil {
		return ""
	}
	if name, ok := e.Metadata["tool_name"].(string); ok {
		return name
	}
	return ""
}

// Terminal reports whether this event ends its run: either the run itself
// signals completion or the final assistant message has been emitted.
func (e StreamEvent) Terminal() bool {
	if e.Type == EventTypeRun && (e.Subtype == SubtypeEnd || e.Subtype == SubtypeError) {
		return true
	}
	return e.Type == EventTypeMessage && e.Subtype == SubtypeFinal
}

// SessionDetail is the authoritative record for one session. A fresh fetch
// of this shape supersedes any optimistic local edits for the tab showing it.
type SessionDetail struct {
	ID          string        `json:"id"`
	Title       string        `json:"title,omitempty"`
	Status      string        `json:"status"`
	ActiveRunID string        `json:"active_run_id,omitempty"`
	Messages    []Message     `json:"messages"`
	Events      []StreamEvent `json:"events,omitempty"`
}

// CreateConversationRequest starts a new conversation with an initial prompt.
// Metadata carries contextual hints for the agent (active data source,
// project id, pinned asset ids) and is opaque to this client.
type CreateConversationRequest struct {
	Prompt   string         `json:"prompt"`
	Model    string         `json:"model,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// CreateConversationResponse is the backend's answer to a new conversation.
// RunID may be empty if the backend accepted the message without starting
// an agent run.
type CreateConversationResponse struct {
	ConversationID string `json:"conversation_id"`
	RunID          string `json:"run_id,omitempty"`
	EventsURL      string `json:"events_url,omitempty"`
}

// AppendMessageRequest appends a message to an existing conversation.
type AppendMessageRequest struct {
	Role     string         `json:"role"`
	Content  string         `json:"content"`
	Model    string         `json:"model,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// AppendMessageResponse is the backend's answer to an appended message.
type AppendMessageResponse struct {
	RunID string `json:"run_id,omitempty"`
}

package session

import "time"

// SessionMetadata describes a session without its full message log.
type SessionMetadata struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	Cwd          string    `json:"cwd"`
	MessageCount int       `json:"messageCount"`
}

// StoredMessage is the on-disk projection of a message.Message: plain
// fields only, so a session file stays readable without importing the
// block-invariant machinery that Conversation enforces in memory.
type StoredMessage struct {
	Role        string             `json:"role"`
	Content     string             `json:"content,omitempty"`
	Thinking    string             `json:"thinking,omitempty"`
	ToolCalls   []StoredToolCall   `json:"toolCalls,omitempty"`
	ToolResults []StoredToolResult `json:"toolResults,omitempty"`
}

// StoredToolCall is the on-disk projection of a message.ToolCall.
type StoredToolCall struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Input string `json:"input"`
}

// StoredToolResult is the on-disk projection of a message.ToolResult.
type StoredToolResult struct {
	ToolCallID string `json:"toolCallId"`
	ToolName   string `json:"toolName,omitempty"`
	Content    string `json:"content"`
	IsError    bool   `json:"isError,omitempty"`
}

// Session represents a complete session with metadata and messages.
type Session struct {
	Metadata SessionMetadata `json:"metadata"`
	System   string          `json:"system,omitempty"`
	Messages []StoredMessage `json:"messages"`
}

// Package message defines the canonical message types, block invariants, and
// the Conversation log used across the codebase. All packages import from
// here to avoid circular dependencies.
package message

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role represents the role of a message participant.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents one turn in the conversation log. Content is either
// plain text (Content/Images/Thinking) or an ordered sequence of blocks
// (ToolCalls on an assistant message, ToolResults on a carrier message).
//
// Invariant: for every ToolCall{ID} in an assistant message at position i,
// the message at position i+1 must be a carrier message (Role==RoleUser)
// whose ToolResults contains a ToolResult{ToolCallID: ID} with a matching
// ID, in the same order the tool calls appeared. See Conversation.Validate.
type Message struct {
	Role        Role         `json:"role"`
	ID          string       `json:"id,omitempty"`
	Timestamp   time.Time    `json:"timestamp,omitempty"`
	Content     string       `json:"content,omitempty"`
	Images      []ImageData  `json:"images,omitempty"`
	Thinking    string       `json:"thinking,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// IsCarrier reports whether this message's sole content is a sequence of
// ToolResult blocks matching a prior assistant message's ToolCalls.
func (m Message) IsCarrier() bool {
	return m.Role == RoleUser && len(m.ToolResults) > 0
}

// ImageData represents image data for multimodal messages.
type ImageData struct {
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
	FileName  string `json:"file_name"`
	Size      int    `json:"size"`
}

// ToolCall represents a ToolUse block emitted by the model.
type ToolCall struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Input string `json:"input"`
}

// ToolResult represents a ToolResult block: the outcome of executing one
// ToolCall, carried back to the model in the next carrier message.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	ToolName   string `json:"tool_name,omitempty"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
}

// UserMessage creates a user message with optional images.
func UserMessage(text string, images []ImageData) Message {
	return Message{
		Role:      RoleUser,
		Timestamp: time.Now(),
		Content:   text,
		Images:    images,
	}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(text, thinking string, calls []ToolCall) Message {
	return Message{
		Role:      RoleAssistant,
		Timestamp: time.Now(),
		Content:   text,
		Thinking:  thinking,
		ToolCalls: calls,
	}
}

// ErrorResult creates an error ToolResult for a tool call.
func ErrorResult(tc ToolCall, content string) ToolResult {
	return ToolResult{
		ToolCallID: tc.ID,
		ToolName:   tc.Name,
		Content:    content,
		IsError:    true,
	}
}

// CarrierMessage builds the single user-role message carrying all of the
// ToolResult blocks produced by executing one assistant message's tool
// calls, in call order. This is what preserves the ToolUse/ToolResult
// invariant: exactly one carrier message follows the assistant message
// that requested the tools.
func CarrierMessage(results []ToolResult) Message {
	return Message{
		Role:        RoleUser,
		Timestamp:   time.Now(),
		ToolResults: results,
	}
}

// ParseToolInput deserializes JSON tool input into a params map.
func ParseToolInput(input string) (map[string]any, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return map[string]any{}, nil
	}
	var params map[string]any
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return nil, err
	}
	return params, nil
}

// BuildConversationText converts messages to text for summarization.
func BuildConversationText(msgs []Message) string {
	var sb strings.Builder
	sb.WriteString("Please summarize this coding conversation:\n\n")

	for _, msg := range msgs {
		switch msg.Role {
		case RoleUser:
			if len(msg.ToolResults) > 0 {
				for _, tr := range msg.ToolResults {
					content := tr.Content
					if len(content) > 500 {
						content = content[:500] + "...[truncated]"
					}
					fmt.Fprintf(&sb, "[Tool Result: %s]\n%s\n\n", tr.ToolName, content)
				}
			} else {
				fmt.Fprintf(&sb, "User: %s\n\n", msg.Content)
			}

		case RoleAssistant:
			if msg.Content != "" {
				fmt.Fprintf(&sb, "Assistant: %s\n\n", msg.Content)
			}
			if len(msg.ToolCalls) > 0 {
				for _, tc := range msg.ToolCalls {
					fmt.Fprintf(&sb, "[Tool Call: %s]\n", tc.Name)
				}
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}

// NeedsCompaction checks if token usage exceeds the threshold percentage of the input limit.
func NeedsCompaction(inputTokens, inputLimit int) bool {
	if inputLimit == 0 || inputTokens == 0 {
		return false
	}
	return float64(inputTokens)/float64(inputLimit)*100 >= 95
}

// CompletionResponse represents a completion response from an LLM provider.
type CompletionResponse struct {
	Content    string     `json:"content,omitempty"`
	Thinking   string     `json:"thinking,omitempty"` // Reasoning content for thinking models
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	StopReason string     `json:"stop_reason"` // "end_turn", "tool_use", "max_tokens"
	Usage      Usage      `json:"usage"`
}

// Usage contains token usage information.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ChunkType represents the type of a stream chunk.
type ChunkType string

const (
	ChunkTypeText      ChunkType = "text"
	ChunkTypeThinking  ChunkType = "thinking"
	ChunkTypeToolStart ChunkType = "tool_start"
	ChunkTypeToolInput ChunkType = "tool_input"
	ChunkTypeDone      ChunkType = "done"
	ChunkTypeError     ChunkType = "error"
)

// StreamChunk represents a chunk in a streaming response.
type StreamChunk struct {
	Type     ChunkType
	Text     string              // For text chunks
	ToolID   string              // For tool_start chunks
	ToolName string              // For tool_start chunks
	Response *CompletionResponse // For done chunks
	Error    error               // For error chunks
}

// Package eventbus implements the typed, lossless, fan-out event channel
// used by every long-running operation (agent loop, sub-agents, tool
// execution) to report progress to whichever consumers are attached — a
// TUI, an embedded JSONL runner, or a test harness.
package eventbus

import "time"

// EventType tags a ChatEvent's payload so consumers can switch on it without
// type-asserting every variant.
type EventType string

const (
	EventUserInput      EventType = "user_input"
	EventStreamStart    EventType = "stream_start"
	EventStreamDelta    EventType = "stream_delta"
	EventStreamEnd      EventType = "stream_end"
	EventToolCallStart  EventType = "tool_call_start"
	EventToolCallEnd    EventType = "tool_call_end"
	EventAgentSpawned   EventType = "agent_spawned"
	EventAgentProgress  EventType = "agent_progress"
	EventAgentRateLtd   EventType = "agent_rate_limited"
	EventAgentToolStart EventType = "agent_tool_start"
	EventAgentToolEnd   EventType = "agent_tool_end"
	EventAgentCompleted EventType = "agent_completed"
	EventAgentFailed    EventType = "agent_failed"
	EventAgentCancelled EventType = "agent_cancelled"
	EventError          EventType = "error"
	EventStatus         EventType = "status"
	EventSessionEnded   EventType = "session_ended"
	EventRefresh        EventType = "refresh"
)

// ChatEvent is one envelope on the bus. Only the field(s) relevant to Type
// are populated; the rest are zero values. This mirrors the JSONL
// envelope used by the embedded event stream (spec: external interfaces,
// event stream).
type ChatEvent struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	// StreamDelta / UserInput / Error
	Text string `json:"text,omitempty"`

	// ToolCallStart / ToolCallEnd / AgentToolStart / AgentToolEnd
	ToolCallID string `json:"tool_call_id,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`
	IsError    bool   `json:"is_error,omitempty"`

	// Agent lifecycle events
	AgentID          string   `json:"agent_id,omitempty"`
	AgentName        string   `json:"agent_name,omitempty"`
	AgentKind        string   `json:"agent_kind,omitempty"`
	Iteration        int      `json:"iteration,omitempty"`
	MaxIterations    int      `json:"max_iterations,omitempty"`
	Action           string   `json:"action,omitempty"`
	FilesChanged     []string `json:"files_changed,omitempty"`
	Summary          string   `json:"summary,omitempty"`
	Error            string   `json:"error,omitempty"`
	RateLimitSecs    float64  `json:"rate_limit_secs,omitempty"`
	RateLimitDeficit int      `json:"rate_limit_deficit,omitempty"`

	// Status
	Status string `json:"status,omitempty"`
}

// UserInput builds an EventUserInput envelope.
func UserInput(text string) ChatEvent {
	return ChatEvent{Type: EventUserInput, Timestamp: time.Now(), Text: text}
}

// StreamStart builds an EventStreamStart envelope.
func StreamStart() ChatEvent {
	return ChatEvent{Type: EventStreamStart, Timestamp: time.Now()}
}

// StreamDelta builds an EventStreamDelta envelope carrying one chunk of
// incremental text.
func StreamDelta(text string) ChatEvent {
	return ChatEvent{Type: EventStreamDelta, Timestamp: time.Now(), Text: text}
}

// StreamEnd builds an EventStreamEnd envelope.
func StreamEnd() ChatEvent {
	return ChatEvent{Type: EventStreamEnd, Timestamp: time.Now()}
}

// ToolCallStart builds an EventToolCallStart envelope.
func ToolCallStart(id, name string) ChatEvent {
	return ChatEvent{Type: EventToolCallStart, Timestamp: time.Now(), ToolCallID: id, ToolName: name}
}

// ToolCallEnd builds an EventToolCallEnd envelope.
func ToolCallEnd(id, name string, isError bool) ChatEvent {
	return ChatEvent{Type: EventToolCallEnd, Timestamp: time.Now(), ToolCallID: id, ToolName: name, IsError: isError}
}

// AgentSpawned builds an EventAgentSpawned envelope.
func AgentSpawned(agentID, name, kind string) ChatEvent {
	return ChatEvent{Type: EventAgentSpawned, Timestamp: time.Now(), AgentID: agentID, AgentName: name, AgentKind: kind}
}

// AgentProgress builds an EventAgentProgress envelope.
func AgentProgress(agentID string, iteration, max int, action string) ChatEvent {
	return ChatEvent{Type: EventAgentProgress, Timestamp: time.Now(), AgentID: agentID, Iteration: iteration, MaxIterations: max, Action: action}
}

// AgentRateLimited builds an EventAgentRateLtd envelope.
func AgentRateLimited(agentID string, secs float64, deficit int) ChatEvent {
	return ChatEvent{Type: EventAgentRateLtd, Timestamp: time.Now(), AgentID: agentID, RateLimitSecs: secs, RateLimitDeficit: deficit}
}

// AgentToolStart builds an EventAgentToolStart envelope.
func AgentToolStart(agentID, toolName string) ChatEvent {
	return ChatEvent{Type: EventAgentToolStart, Timestamp: time.Now(), AgentID: agentID, ToolName: toolName}
}

// AgentToolEnd builds an EventAgentToolEnd envelope.
func AgentToolEnd(agentID, toolName string, isError bool) ChatEvent {
	return ChatEvent{Type: EventAgentToolEnd, Timestamp: time.Now(), AgentID: agentID, ToolName: toolName, IsError: isError}
}

// AgentCompleted builds the terminal EventAgentCompleted envelope.
func AgentCompleted(agentID string, filesChanged []string, summary string) ChatEvent {
	return ChatEvent{Type: EventAgentCompleted, Timestamp: time.Now(), AgentID: agentID, FilesChanged: filesChanged, Summary: summary}
}

// AgentFailed builds the terminal EventAgentFailed envelope.
func AgentFailed(agentID, errText string) ChatEvent {
	return ChatEvent{Type: EventAgentFailed, Timestamp: time.Now(), AgentID: agentID, Error: errText}
}

// AgentCancelled builds the terminal EventAgentCancelled envelope.
func AgentCancelled(agentID string) ChatEvent {
	return ChatEvent{Type: EventAgentCancelled, Timestamp: time.Now(), AgentID: agentID}
}

// Err builds an EventError envelope.
func Err(text string) ChatEvent {
	return ChatEvent{Type: EventError, Timestamp: time.Now(), Text: text}
}

// StatusEvent builds an EventStatus envelope.
func StatusEvent(status string) ChatEvent {
	return ChatEvent{Type: EventStatus, Timestamp: time.Now(), Status: status}
}

// SessionEnded builds an EventSessionEnded envelope.
func SessionEnded() ChatEvent {
	return ChatEvent{Type: EventSessionEnded, Timestamp: time.Now()}
}

// Refresh builds an EventRefresh envelope, a hint that consumers should
// redraw from current state rather than an incremental delta.
func Refresh() ChatEvent {
	return ChatEvent{Type: EventRefresh, Timestamp: time.Now()}
}

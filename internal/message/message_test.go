package message

import (
	"strings"
	"testing"
)

func TestUserMessage(t *testing.T) {
	msg := UserMessage("hello", nil)
	if msg.Role != RoleUser {
		t.Errorf("expected role %q, got %q", RoleUser, msg.Role)
	}
	if msg.Content != "hello" {
		t.Errorf("expected content 'hello', got %q", msg.Content)
	}
	if len(msg.Images) != 0 {
		t.Errorf("expected 0 images, got %d", len(msg.Images))
	}
}

func TestUserMessageWithImages(t *testing.T) {
	images := []ImageData{
		{MediaType: "image/png", Data: "abc123", FileName: "test.png", Size: 100},
	}
	msg := UserMessage("describe this", images)
	if msg.Role != RoleUser {
		t.Errorf("expected role %q, got %q", RoleUser, msg.Role)
	}
	if len(msg.Images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(msg.Images))
	}
	if msg.Images[0].MediaType != "image/png" {
		t.Errorf("expected media type 'image/png', got %q", msg.Images[0].MediaType)
	}
}

func TestAssistantMessage(t *testing.T) {
	calls := []ToolCall{
		{ID: "tc1", Name: "Read", Input: `{"file_path": "/tmp"}`},
	}
	msg := AssistantMessage("hello", "thinking...", calls)
	if msg.Role != RoleAssistant {
		t.Errorf("expected role %q, got %q", RoleAssistant, msg.Role)
	}
	if msg.Content != "hello" {
		t.Errorf("expected content 'hello', got %q", msg.Content)
	}
	if msg.Thinking != "thinking..." {
		t.Errorf("expected thinking 'thinking...', got %q", msg.Thinking)
	}
	if len(msg.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(msg.ToolCalls))
	}
}

func TestCarrierMessage(t *testing.T) {
	results := []ToolResult{
		{ToolCallID: "tc1", ToolName: "Read", Content: "file content"},
		{ToolCallID: "tc2", ToolName: "Bash", Content: "ok"},
	}
	msg := CarrierMessage(results)
	if msg.Role != RoleUser {
		t.Errorf("expected role %q, got %q", RoleUser, msg.Role)
	}
	if !msg.IsCarrier() {
		t.Error("expected IsCarrier() true")
	}
	if len(msg.ToolResults) != 2 {
		t.Fatalf("expected 2 tool results, got %d", len(msg.ToolResults))
	}
	if msg.ToolResults[0].Content != "file content" {
		t.Errorf("expected content 'file content', got %q", msg.ToolResults[0].Content)
	}
}

func TestErrorResult(t *testing.T) {
	tc := ToolCall{ID: "tc1", Name: "Bash", Input: `{"command": "ls"}`}
	r := ErrorResult(tc, "permission denied")
	if r.ToolCallID != "tc1" {
		t.Errorf("expected ToolCallID 'tc1', got %q", r.ToolCallID)
	}
	if r.ToolName != "Bash" {
		t.Errorf("expected ToolName 'Bash', got %q", r.ToolName)
	}
	if r.Content != "permission denied" {
		t.Errorf("expected content 'permission denied', got %q", r.Content)
	}
	if !r.IsError {
		t.Error("expected IsError true")
	}
}

func TestRoleStringConversion(t *testing.T) {
	if string(RoleUser) != "user" {
		t.Errorf("RoleUser should be 'user', got %q", RoleUser)
	}
	if string(RoleAssistant) != "assistant" {
		t.Errorf("RoleAssistant should be 'assistant', got %q", RoleAssistant)
	}
}

func TestBuildConversationText(t *testing.T) {
	msgs := []Message{
		UserMessage("hello", nil),
		AssistantMessage("hi there", "", []ToolCall{{ID: "tc1", Name: "Read"}}),
		CarrierMessage([]ToolResult{{ToolCallID: "tc1", ToolName: "Read", Content: "file data"}}),
	}

	text := BuildConversationText(msgs)
	if !strings.Contains(text, "User: hello") {
		t.Error("expected user message in output")
	}
	if !strings.Contains(text, "Assistant: hi there") {
		t.Error("expected assistant message in output")
	}
	if !strings.Contains(text, "[Tool Call: Read]") {
		t.Error("expected tool call in output")
	}
	if !strings.Contains(text, "[Tool Result: Read]") {
		t.Error("expected tool result in output")
	}
}

func TestBuildConversationTextTruncation(t *testing.T) {
	longContent := strings.Repeat("x", 600)
	msgs := []Message{
		CarrierMessage([]ToolResult{{ToolCallID: "tc1", ToolName: "Read", Content: longContent}}),
	}

	text := BuildConversationText(msgs)
	if !strings.Contains(text, "...[truncated]") {
		t.Error("expected truncation marker for long tool result")
	}
}

func TestParseToolInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		wantLen int
	}{
		{"empty", "", false, 0},
		{"valid", `{"key": "value"}`, false, 1},
		{"invalid", `not json`, true, 0},
		{"whitespace", "  ", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := ParseToolInput(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseToolInput() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(params) != tt.wantLen {
				t.Errorf("expected %d params, got %d", tt.wantLen, len(params))
			}
		})
	}
}

func TestNeedsCompaction(t *testing.T) {
	tests := []struct {
		name        string
		inputTokens int
		inputLimit  int
		want        bool
	}{
		{"zero limit", 100, 0, false},
		{"zero tokens", 0, 1000, false},
		{"below threshold", 500, 1000, false},
		{"at threshold", 950, 1000, true},
		{"above threshold", 960, 1000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NeedsCompaction(tt.inputTokens, tt.inputLimit)
			if got != tt.want {
				t.Errorf("NeedsCompaction(%d, %d) = %v, want %v", tt.inputTokens, tt.inputLimit, got, tt.want)
			}
		})
	}
}

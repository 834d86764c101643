package message

import (
	"strings"
	"testing"
)

func TestConversationPushAndClear(t *testing.T) {
	c := NewConversation(nil)
	c.SetSystem("you are a coding assistant")
	c.Push(UserMessage("hi", nil))
	c.Push(AssistantMessage("hello", "", nil))

	if c.Len() != 2 {
		t.Fatalf("expected 2 messages, got %d", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected 0 messages after clear, got %d", c.Len())
	}
	if c.System() != "you are a coding assistant" {
		t.Errorf("expected system prompt to survive Clear, got %q", c.System())
	}
}

func TestConversationValidateHealthy(t *testing.T) {
	c := NewConversation(nil)
	c.Push(UserMessage("read the file", nil))
	c.Push(AssistantMessage("", "", []ToolCall{{ID: "tc1", Name: "Read", Input: `{"path":"a.go"}`}}))
	c.Push(CarrierMessage([]ToolResult{{ToolCallID: "tc1", ToolName: "Read", Content: "package main"}}))

	if err := c.Validate(); err != nil {
		t.Fatalf("expected healthy conversation, got %v", err)
	}
}

func TestConversationValidateOrphanToolUse(t *testing.T) {
	c := NewConversation(nil)
	c.Push(AssistantMessage("", "", []ToolCall{{ID: "tc1", Name: "Read"}}))

	if err := c.Validate(); err == nil {
		t.Fatal("expected invariant error for trailing tool_use with no carrier")
	}
}

func TestConversationValidateMismatchedCarrier(t *testing.T) {
	c := NewConversation(nil)
	c.Push(AssistantMessage("", "", []ToolCall{{ID: "tc1", Name: "Read"}}))
	c.Push(CarrierMessage([]ToolResult{{ToolCallID: "tc-wrong", ToolName: "Read", Content: "x"}}))

	if err := c.Validate(); err == nil {
		t.Fatal("expected invariant error for mismatched tool_call_id")
	}
}

func TestConversationNeedsTrimming(t *testing.T) {
	c := NewConversation(func(string) int { return 1000 })
	c.Push(UserMessage("x", nil))

	if !c.NeedsTrimming(1000) {
		t.Error("expected NeedsTrimming true at 100% of a 1000 token window")
	}
	if c.NeedsTrimming(0) {
		t.Error("expected NeedsTrimming false for a zero window")
	}
}

func TestConversationTrimToFitDropsOldestPairs(t *testing.T) {
	c := NewConversation(func(s string) int { return len(s) })

	// Three independent tool-use/carrier pairs, each costing the same.
	for i := 0; i < 3; i++ {
		id := string(rune('a' + i))
		c.Push(AssistantMessage("", "", []ToolCall{{ID: id, Name: "Read", Input: strings.Repeat("x", 50)}}))
		c.Push(CarrierMessage([]ToolResult{{ToolCallID: id, ToolName: "Read", Content: strings.Repeat("y", 50)}}))
	}

	before := c.EstimatedTokens()
	removed := c.TrimToFit(before / 3)

	if removed == 0 {
		t.Fatal("expected TrimToFit to remove messages")
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("trimming broke the invariant: %v", err)
	}
	// Every remaining assistant/carrier pair must still be paired - no
	// trailing orphan carrier at the new head.
	if c.Len() > 0 && c.Messages()[0].IsCarrier() {
		t.Error("trim left an orphan carrier message at the head")
	}
}

func TestConversationTrimToFitNoopWhenAlreadyUnderTarget(t *testing.T) {
	c := NewConversation(func(s string) int { return len(s) })
	c.Push(UserMessage("hi", nil))

	removed := c.TrimToFit(1_000_000)
	if removed != 0 {
		t.Errorf("expected no removal when already under target, got %d", removed)
	}
	if c.Len() != 1 {
		t.Errorf("expected message preserved, got length %d", c.Len())
	}
}

func TestConversationTruncateForRollback(t *testing.T) {
	c := NewConversation(nil)
	c.Push(UserMessage("hi", nil))
	mark := c.Len()
	c.Push(AssistantMessage("thinking", "", []ToolCall{{ID: "tc1", Name: "Bash"}}))
	c.Push(CarrierMessage([]ToolResult{{ToolCallID: "tc1", ToolName: "Bash", Content: "oops"}}))

	c.Truncate(mark)

	if c.Len() != mark {
		t.Fatalf("expected rollback to restore length %d, got %d", mark, c.Len())
	}
}

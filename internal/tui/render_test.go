package tui

import (
	"strings"
	"testing"

	"github.com/coreagent/gencore/internal/eventbus"
)

func TestEventToLineToolCallStart(t *testing.T) {
	line, ok := eventToLine(eventbus.ToolCallStart("tc1", "file_read"))
	if !ok {
		t.Fatal("expected ToolCallStart to produce a line")
	}
	if line.kind != lineTool || !strings.Contains(line.text, "file_read") {
		t.Errorf("unexpected line: %+v", line)
	}
}

func TestEventToLineToolCallEndMarksError(t *testing.T) {
	line, ok := eventToLine(eventbus.ToolCallEnd("tc1", "shell", true))
	if !ok {
		t.Fatal("expected ToolCallEnd to produce a line")
	}
	if !strings.Contains(line.text, "✗") {
		t.Errorf("expected an error mark in %q", line.text)
	}
}

func TestEventToLineStreamDeltaProducesNoLine(t *testing.T) {
	if _, ok := eventToLine(eventbus.StreamDelta("hi")); ok {
		t.Fatal("StreamDelta should not produce a standalone line; it accumulates")
	}
}

func TestEventToLineAgentLifecycle(t *testing.T) {
	cases := []struct {
		ev   eventbus.ChatEvent
		kind lineKind
	}{
		{eventbus.AgentSpawned("a1", "sub", "explore"), lineAgent},
		{eventbus.AgentCompleted("a1", nil, "done"), lineAgent},
		{eventbus.AgentFailed("a1", "boom"), lineError},
		{eventbus.AgentCancelled("a1"), lineAgent},
		{eventbus.AgentRateLimited("a1", 2.5, 100), lineAgent},
	}
	for _, c := range cases {
		line, ok := eventToLine(c.ev)
		if !ok {
			t.Fatalf("expected a line for %v", c.ev.Type)
		}
		if line.kind != c.kind {
			t.Errorf("%v: expected kind %v, got %v", c.ev.Type, c.kind, line.kind)
		}
	}
}

func TestShortIDTruncates(t *testing.T) {
	if got := shortID("abcdefghijklmnop"); got != "abcdefgh" {
		t.Errorf("expected truncated id, got %q", got)
	}
	if got := shortID("short"); got != "short" {
		t.Errorf("expected untouched short id, got %q", got)
	}
}

func TestJoinLines(t *testing.T) {
	lines := []transcriptLine{
		{kind: lineUser, text: "hello"},
		{kind: lineAssistant, text: "hi there"},
	}
	out := joinLines(lines, 80)
	if !strings.Contains(out, "hello") || !strings.Contains(out, "hi there") {
		t.Errorf("expected both lines rendered, got %q", out)
	}
}

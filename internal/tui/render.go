package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/coreagent/gencore/internal/eventbus"
)

// lineKind tags a rendered transcript line so styling stays in one place.
type lineKind int

const (
	lineUser lineKind = iota
	lineAssistant
	lineNotice
	lineTool
	lineAgent
	lineError
	lineStatus
)

type transcriptLine struct {
	kind lineKind
	text string
}

func (l transcriptLine) render(width int) string {
	text := wrapToWidth(l.text, width)
	switch l.kind {
	case lineUser:
		return userStyle.Render("you › ") + text
	case lineAssistant:
		return assistantStyle.Render(text)
	case lineNotice:
		return noticeStyle.Render(text)
	case lineTool:
		return toolStyle.Render(text)
	case lineAgent:
		return agentStyle.Render(text)
	case lineError:
		return errorStyle.Render(text)
	case lineStatus:
		return statusStyle.Render(text)
	default:
		return text
	}
}

// wrapToWidth rewraps text so no physical line exceeds width terminal
// columns, measuring each rune's display width rather than its rune count so
// wide CJK/emoji characters - which occupy two terminal columns - don't
// silently overflow the viewport. width <= 0 means unknown/unbounded and
// text is returned unchanged.
func wrapToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	if runewidth.StringWidth(line) <= width {
		return []string{line}
	}
	var lines []string
	var cur strings.Builder
	curWidth := 0
	for _, r := range line {
		rw := runewidth.RuneWidth(r)
		if curWidth > 0 && curWidth+rw > width {
			lines = append(lines, cur.String())
			cur.Reset()
			curWidth = 0
		}
		cur.WriteRune(r)
		curWidth += rw
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// eventToLine turns one bus event into a transcript line, if it produces
// one on its own. StreamDelta does not: deltas accumulate into the
// in-progress assistant line the model tracks separately, only flushed to
// the transcript on StreamEnd.
func eventToLine(ev eventbus.ChatEvent) (transcriptLine, bool) {
	switch ev.Type {
	case eventbus.EventToolCallStart:
		return transcriptLine{kind: lineTool, text: fmt.Sprintf("→ %s", ev.ToolName)}, true
	case eventbus.EventToolCallEnd:
		mark := "✓"
		if ev.IsError {
			mark = "✗"
		}
		return transcriptLine{kind: lineTool, text: fmt.Sprintf("%s %s", mark, ev.ToolName)}, true
	case eventbus.EventAgentSpawned:
		return transcriptLine{kind: lineAgent, text: fmt.Sprintf("sub-agent %s spawned (%s)", shortID(ev.AgentID), ev.AgentKind)}, true
	case eventbus.EventAgentRateLtd:
		return transcriptLine{kind: lineAgent, text: fmt.Sprintf("sub-agent %s rate-limited, waiting %.0fs (%d tokens over)", shortID(ev.AgentID), ev.RateLimitSecs, ev.RateLimitDeficit)}, true
	case eventbus.EventAgentCompleted:
		return transcriptLine{kind: lineAgent, text: fmt.Sprintf("sub-agent %s done: %s", shortID(ev.AgentID), ev.Summary)}, true
	case eventbus.EventAgentFailed:
		return transcriptLine{kind: lineError, text: fmt.Sprintf("sub-agent %s failed: %s", shortID(ev.AgentID), ev.Error)}, true
	case eventbus.EventAgentCancelled:
		return transcriptLine{kind: lineAgent, text: fmt.Sprintf("sub-agent %s cancelled", shortID(ev.AgentID))}, true
	case eventbus.EventError:
		return transcriptLine{kind: lineError, text: ev.Text}, true
	case eventbus.EventStatus:
		return transcriptLine{kind: lineStatus, text: ev.Status}, true
	default:
		return transcriptLine{}, false
	}
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func joinLines(lines []transcriptLine, width int) string {
	rendered := make([]string, 0, len(lines))
	for _, l := range lines {
		rendered = append(rendered, l.render(width))
	}
	return strings.Join(rendered, "\n")
}

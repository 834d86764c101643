package session

import "github.com/coreagent/gencore/internal/message"

// FromMessages projects a live conversation log into its on-disk form.
func FromMessages(msgs []message.Message) []StoredMessage {
	out := make([]StoredMessage, 0, len(msgs))
	for _, m := range msgs {
		sm := StoredMessage{
			Role:     string(m.Role),
			Content:  m.Content,
			Thinking: m.Thinking,
		}
		for _, tc := range m.ToolCalls {
			sm.ToolCalls = append(sm.ToolCalls, StoredToolCall{ID: tc.ID, Name: tc.Name, Input: tc.Input})
		}
		for _, tr := range m.ToolResults {
			sm.ToolResults = append(sm.ToolResults, StoredToolResult{
				ToolCallID: tr.ToolCallID,
				ToolName:   tr.ToolName,
				Content:    tr.Content,
				IsError:    tr.IsError,
			})
		}
		out = append(out, sm)
	}
	return out
}

// ToMessages reconstructs a live conversation log from its on-disk form.
func ToMessages(stored []StoredMessage) []message.Message {
	out := make([]message.Message, 0, len(stored))
	for _, sm := range stored {
		m := message.Message{
			Role:     message.Role(sm.Role),
			Content:  sm.Content,
			Thinking: sm.Thinking,
		}
		for _, tc := range sm.ToolCalls {
			m.ToolCalls = append(m.ToolCalls, message.ToolCall{ID: tc.ID, Name: tc.Name, Input: tc.Input})
		}
		for _, tr := range sm.ToolResults {
			m.ToolResults = append(m.ToolResults, message.ToolResult{
				ToolCallID: tr.ToolCallID,
				ToolName:   tr.ToolName,
				Content:    tr.Content,
				IsError:    tr.IsError,
			})
		}
		out = append(out, m)
	}
	return out
}

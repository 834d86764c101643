package message

// TokenCounter estimates the token length of a string. Providers supply their
// own estimate (see provider.LlmProvider.CountTokens); nil falls back to
// the coarse len/4 approximation used throughout this package.
type TokenCounter func(text string) int

func approxTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}

// Conversation is the ordered message log for one chat session: a system
// prompt plus a sequence of user/assistant/carrier messages. It owns the
// trimming policy that keeps the log under a model's context window while
// never orphaning a ToolResult block.
type Conversation struct {
	system   string
	messages []Message
	counter  TokenCounter
}

// NewConversation creates an empty conversation with an optional token
// counter override.
func NewConversation(counter TokenCounter) *Conversation {
	return &Conversation{counter: counter}
}

// SetSystem sets the system prompt.
func (c *Conversation) SetSystem(text string) { c.system = text }

// System returns the system prompt.
func (c *Conversation) System() string { return c.system }

// Push appends a message to the log.
func (c *Conversation) Push(msg Message) { c.messages = append(c.messages, msg) }

// Clear removes all messages but preserves the system prompt.
func (c *Conversation) Clear() { c.messages = nil }

// Messages returns the current message log.
func (c *Conversation) Messages() []Message { return c.messages }

// Len returns the number of messages in the log.
func (c *Conversation) Len() int { return len(c.messages) }

// Truncate drops every message at or after index n. Used by the agent loop's
// rollback rule to restore the pre-turn length on Interrupted/Failed.
func (c *Conversation) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n >= len(c.messages) {
		return
	}
	c.messages = c.messages[:n]
}

func (c *Conversation) tokensOf(text string) int {
	if c.counter != nil {
		return c.counter(text)
	}
	return approxTokens(text)
}

// EstimatedTokens sums the approximate token cost of the system prompt and
// every message currently in the log.
func (c *Conversation) EstimatedTokens() int {
	total := c.tokensOf(c.system)
	for _, m := range c.messages {
		total += c.messageTokens(m)
	}
	return total
}

func (c *Conversation) messageTokens(m Message) int {
	total := c.tokensOf(m.Content) + c.tokensOf(m.Thinking)
	for _, tc := range m.ToolCalls {
		total += c.tokensOf(tc.Input) + c.tokensOf(tc.Name)
	}
	for _, tr := range m.ToolResults {
		total += c.tokensOf(tr.Content)
	}
	return total
}

// NeedsTrimming is true once the log reaches 80% of the context window.
func (c *Conversation) NeedsTrimming(contextWindow int) bool {
	if contextWindow <= 0 {
		return false
	}
	return float64(c.EstimatedTokens())/float64(contextWindow) >= 0.8
}

// TrimToFit removes the oldest messages until the estimated token count is
// at or below target, without ever leaving an orphaned ToolResult carrier
// (one whose matching ToolCall assistant message was just dropped). It
// returns the number of messages removed.
//
// The cut point is chosen by walking forward from the oldest message,
// accumulating removed tokens, until the remaining estimate fits target or
// no more messages can be safely dropped. If dropping an assistant message
// with tool calls, its carrier message is dropped in the same step so the
// invariant in Validate never breaks.
func (c *Conversation) TrimToFit(target int) int {
	if target <= 0 || len(c.messages) == 0 {
		return 0
	}

	remaining := c.EstimatedTokens()
	cut := 0

	for cut < len(c.messages) && remaining > target {
		step := 1
		msg := c.messages[cut]
		// Never drop a carrier message on its own; it must go together
		// with the assistant message preceding it. Since we walk
		// oldest-first, an assistant message with tool calls must take
		// its carrier with it in the same step.
		if msg.Role == RoleAssistant && len(msg.ToolCalls) > 0 && cut+1 < len(c.messages) && c.messages[cut+1].IsCarrier() {
			step = 2
		}

		for i := 0; i < step && cut+i < len(c.messages); i++ {
			remaining -= c.messageTokens(c.messages[cut+i])
		}
		cut += step
	}

	// If we stopped in the middle of a pair (trailing orphan carrier at the
	// new head), extend forward one more message to drop it too.
	if cut < len(c.messages) && c.messages[cut].IsCarrier() {
		remaining -= c.messageTokens(c.messages[cut])
		cut++
	}

	if cut == 0 {
		return 0
	}
	c.messages = c.messages[cut:]
	return cut
}

// Validate checks the ToolUse/ToolResult invariant: every assistant message
// with ToolCalls must be immediately followed by a carrier message whose
// ToolResults match those calls, in order, by ID.
func (c *Conversation) Validate() error {
	for i, m := range c.messages {
		if m.Role != RoleAssistant || len(m.ToolCalls) == 0 {
			continue
		}
		if i+1 >= len(c.messages) {
			return &InvariantError{Index: i, Reason: "assistant tool_use with no following carrier message"}
		}
		next := c.messages[i+1]
		if !next.IsCarrier() {
			return &InvariantError{Index: i, Reason: "assistant tool_use not followed by a carrier message"}
		}
		if len(next.ToolResults) != len(m.ToolCalls) {
			return &InvariantError{Index: i, Reason: "carrier message tool_result count mismatch"}
		}
		for j, tc := range m.ToolCalls {
			if next.ToolResults[j].ToolCallID != tc.ID {
				return &InvariantError{Index: i, Reason: "carrier message tool_result id mismatch"}
			}
		}
	}
	return nil
}

// InvariantError describes a ToolUse/ToolResult invariant violation.
type InvariantError struct {
	Index  int
	Reason string
}

func (e *InvariantError) Error() string {
	return "conversation invariant violated at message " + itoa(e.Index) + ": " + e.Reason
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

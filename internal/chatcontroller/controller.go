// Package chatcontroller drives one interactive session: classifying each
// input line into an exit command, a slash command, a shell shortcut, or a
// plain-text turn, running plain-text turns through agentloop.Loop with
// cooperative Ctrl+C cancellation, and keeping the conversation trimmed to
// the model's context window between turns.
package chatcontroller

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/coreagent/gencore/internal/agentloop"
	"github.com/coreagent/gencore/internal/contextstore"
	"github.com/coreagent/gencore/internal/eventbus"
	"github.com/coreagent/gencore/internal/message"
	"github.com/coreagent/gencore/internal/permission"
	"github.com/coreagent/gencore/internal/provider"
	"github.com/coreagent/gencore/internal/scheduler"
	"github.com/coreagent/gencore/internal/tool"
)

// defaultContextWindow is used when the active model reports no context
// window size, mirroring agentloop's own fallback.
const defaultContextWindow = 128000

// Output is what handling one input line produces. Kind lets a front end
// (TUI, embedded JSONL runner, tests) decide how to render it without
// string-matching Text.
type Output struct {
	Kind Kind
	Text string
}

// Kind tags an Output so callers can branch without parsing Text.
type Kind int

const (
	KindEmpty Kind = iota
	KindExit
	KindCommandReply
	KindTurnCompleted
	KindTurnInterrupted
	KindTurnFailed
)

// Controller owns one interactive session's state: the live conversation,
// its context store, the tool registry and permission broker the agent
// loop runs against, and the sub-agent scheduler reachable via spawn_agent.
type Controller struct {
	Provider    provider.LlmProvider
	Model       string
	MaxTokens   int
	Temperature float64

	Conversation *message.Conversation
	Store        *contextstore.Store
	Tools        *tool.Registry
	Broker       *permission.Broker
	Scheduler    *scheduler.Scheduler
	Bus          eventbus.Bus

	Cwd string

	mu     sync.Mutex
	cancel context.CancelFunc
}

// HandleLine classifies one line of input and runs it to completion. It is
// not safe to call concurrently with itself — only one line is ever "in
// flight" in an interactive session — but Cancel may be called from another
// goroutine (e.g. a Ctrl+C handler) while HandleLine is running.
func (c *Controller) HandleLine(ctx context.Context, line string) Output {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Output{Kind: KindEmpty}
	}

	switch {
	case isExitCommand(trimmed):
		return Output{Kind: KindExit}
	case strings.HasPrefix(trimmed, "/"):
		return c.runSlashCommand(ctx, trimmed)
	case strings.HasPrefix(trimmed, ">"):
		return c.runShellShortcut(ctx, strings.TrimSpace(trimmed[1:]))
	default:
		return c.runTurn(ctx, trimmed)
	}
}

func isExitCommand(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit", ":q":
		return true
	default:
		return false
	}
}

// Cancel cancels whatever turn is currently running, if any. It is a no-op
// if no turn is in flight. Per spec, this cancels the current turn only —
// the session continues normally on the next line.
func (c *Controller) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// runTurn records the user message, runs it through a fresh agentloop.Loop
// racing the returned context against Cancel, and — on successful
// completion — silently trims the conversation to fit the model's context
// window once it has reached 80% of that window.
func (c *Controller) runTurn(ctx context.Context, text string) Output {
	c.Conversation.Push(message.UserMessage(text, nil))
	if c.Store != nil {
		c.Store.StoreMessage("user", text, 0)
	}
	c.Bus.Publish(eventbus.UserInput(text))

	turnCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.cancel = nil
		c.mu.Unlock()
		cancel()
	}()

	loop := &agentloop.Loop{
		Provider:     c.Provider,
		Model:        c.Model,
		MaxTokens:    c.MaxTokens,
		Temperature:  c.Temperature,
		Conversation: c.Conversation,
		Tools:        c.Tools,
		Broker:       c.Broker,
		Bus:          c.Bus,
		Store:        c.Store,
		Cwd:          c.Cwd,
	}

	outcome := loop.Run(turnCtx)

	switch outcome.Status {
	case agentloop.StatusCompleted:
		if c.Store != nil {
			c.Store.StoreMessage("assistant", outcome.Summary, 0)
		}
		c.trimIfNeeded()
		return Output{Kind: KindTurnCompleted, Text: outcome.Summary}
	case agentloop.StatusInterrupted:
		return Output{Kind: KindTurnInterrupted, Text: "[turn interrupted]"}
	default:
		errText := "unknown error"
		if outcome.Err != nil {
			errText = outcome.Err.Error()
		}
		return Output{Kind: KindTurnFailed, Text: "error: " + errText}
	}
}

func (c *Controller) trimIfNeeded() {
	window := defaultContextWindow
	if info, ok := c.Provider.GetModelInfo(c.Model); ok && info.ContextWindow > 0 {
		window = info.ContextWindow
	}
	if c.Conversation.NeedsTrimming(window) {
		c.Conversation.TrimToFit(window)
	}
}

// runShellShortcut runs the rest of the line as a shell command via the
// "shell" tool directly, bypassing the model entirely — for quick commands
// the user doesn't want to spend a turn asking the model to run.
func (c *Controller) runShellShortcut(ctx context.Context, command string) Output {
	if command == "" {
		return Output{Kind: KindCommandReply, Text: "usage: >command"}
	}
	t, ok := c.Tools.Get("shell")
	if !ok {
		return Output{Kind: KindCommandReply, Text: "shell tool is not registered"}
	}
	result := t.Execute(ctx, "shell-shortcut", map[string]any{"command": command}, tool.Context{Cwd: c.Cwd, Broker: c.Broker})
	return Output{Kind: KindCommandReply, Text: result.Content}
}

func (c *Controller) statsText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "messages: %d\n", c.Conversation.Len())
	fmt.Fprintf(&sb, "estimated tokens: %d\n", c.Conversation.EstimatedTokens())
	if c.Store != nil {
		st := c.Store.Stats()
		fmt.Fprintf(&sb, "context store: hot=%d warm=%d cold=%d (~%d tokens)\n", st.Hot, st.Warm, st.Cold, st.TotalTokens)
	}
	return sb.String()
}

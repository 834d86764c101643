package agentloop

import (
	"context"
	"testing"

	"github.com/coreagent/gencore/internal/eventbus"
	"github.com/coreagent/gencore/internal/message"
	"github.com/coreagent/gencore/internal/permission"
	"github.com/coreagent/gencore/internal/provider"
	"github.com/coreagent/gencore/internal/tool"
)

// --- test doubles ---

// scriptedProvider returns one canned CompletionResponse per call, in
// order, and reports a fixed context window.
type scriptedProvider struct {
	responses []message.CompletionResponse
	errs      []error
	call      int
}

func (p *scriptedProvider) Name() string { return "scripted" }
func (p *scriptedProvider) AvailableModels(ctx context.Context) ([]provider.ModelInfo, error) {
	return nil, nil
}
func (p *scriptedProvider) SupportsModel(id string) bool { return true }
func (p *scriptedProvider) GetModelInfo(id string) (provider.ModelInfo, bool) {
	return provider.ModelInfo{ID: id, ContextWindow: 100000}, true
}
func (p *scriptedProvider) CountTokens(text string) int { return len(text) / 4 }

func (p *scriptedProvider) Complete(ctx context.Context, req provider.CompletionRequest) (message.CompletionResponse, error) {
	return provider.Complete(ctx, p, req)
}

func (p *scriptedProvider) Stream(ctx context.Context, req provider.CompletionRequest) <-chan message.StreamChunk {
	ch := make(chan message.StreamChunk, 1)
	idx := p.call
	p.call++
	go func() {
		defer close(ch)
		if idx < len(p.errs) && p.errs[idx] != nil {
			ch <- message.StreamChunk{Type: message.ChunkTypeError, Error: p.errs[idx]}
			return
		}
		if idx >= len(p.responses) {
			ch <- message.StreamChunk{Type: message.ChunkTypeDone, Response: &message.CompletionResponse{StopReason: "end_turn"}}
			return
		}
		resp := p.responses[idx]
		ch <- message.StreamChunk{Type: message.ChunkTypeDone, Response: &resp}
	}()
	return ch
}

// echoTool always succeeds and requires no permission.
type echoTool struct{ calls int }

func (t *echoTool) Name() string { return "echo" }
func (t *echoTool) Definition() tool.Definition {
	return tool.Definition{Name: "echo", Description: "echoes input"}
}
func (t *echoTool) RequiresPermission() bool                               { return false }
func (t *echoTool) PermissionRequest(args map[string]any) *permission.Request { return nil }
func (t *echoTool) Execute(ctx context.Context, toolUseID string, args map[string]any, tc tool.Context) tool.Result {
	t.calls++
	return tool.OKResult(toolUseID, "ok")
}

func newLoop(p provider.LlmProvider, reg *tool.Registry) *Loop {
	conv := message.NewConversation(nil)
	conv.SetSystem("you are a test agent")
	conv.Push(message.UserMessage("hello", nil))
	return &Loop{
		Provider:     p,
		Model:        "test-model",
		MaxTokens:    4096,
		Conversation: conv,
		Tools:        reg,
		Broker:       permission.NewBroker(nil),
		Bus:          eventbus.New(),
		Cwd:          "/tmp",
	}
}

// --- tests ---

func TestRunCompletesWithNoToolCalls(t *testing.T) {
	p := &scriptedProvider{responses: []message.CompletionResponse{
		{Content: "hi there", StopReason: "end_turn"},
	}}
	loop := newLoop(p, tool.NewRegistry())

	out := loop.Run(context.Background())
	if out.Status != StatusCompleted {
		t.Fatalf("expected StatusCompleted, got %v (err=%v)", out.Status, out.Err)
	}
	if out.Summary != "hi there" {
		t.Errorf("expected summary %q, got %q", "hi there", out.Summary)
	}
	if loop.Conversation.Len() != 2 {
		t.Errorf("expected 2 messages (user + assistant), got %d", loop.Conversation.Len())
	}
}

func TestRunExecutesToolCallAndLoopsOnce(t *testing.T) {
	et := &echoTool{}
	reg := tool.NewRegistry()
	reg.Register(et)

	p := &scriptedProvider{responses: []message.CompletionResponse{
		{StopReason: "tool_use", ToolCalls: []message.ToolCall{{ID: "1", Name: "echo", Input: `{"x":1}`}}},
		{Content: "done", StopReason: "end_turn"},
	}}
	loop := newLoop(p, reg)

	out := loop.Run(context.Background())
	if out.Status != StatusCompleted {
		t.Fatalf("expected StatusCompleted, got %v (err=%v)", out.Status, out.Err)
	}
	if et.calls != 1 {
		t.Errorf("expected echo tool to run once, got %d", et.calls)
	}
	if err := loop.Conversation.Validate(); err != nil {
		t.Errorf("conversation invariant violated: %v", err)
	}
}

func TestRunRollsBackOnFailure(t *testing.T) {
	p := &scriptedProvider{errs: []error{&provider.InvalidRequestError{Message: "bad request"}}}
	loop := newLoop(p, tool.NewRegistry())
	preLen := loop.Conversation.Len()

	out := loop.Run(context.Background())
	if out.Status != StatusFailed {
		t.Fatalf("expected StatusFailed, got %v", out.Status)
	}
	if loop.Conversation.Len() != preLen {
		t.Errorf("expected conversation rolled back to %d messages, got %d", preLen, loop.Conversation.Len())
	}
}

func TestRunDetectsRepeatedToolCalls(t *testing.T) {
	et := &echoTool{}
	reg := tool.NewRegistry()
	reg.Register(et)

	call := message.ToolCall{ID: "1", Name: "echo", Input: `{"x":1}`}
	p := &scriptedProvider{responses: []message.CompletionResponse{
		{StopReason: "tool_use", ToolCalls: []message.ToolCall{call}},
		{StopReason: "tool_use", ToolCalls: []message.ToolCall{call}},
		{StopReason: "tool_use", ToolCalls: []message.ToolCall{call}},
		{Content: "giving up on that approach", StopReason: "end_turn"},
	}}
	loop := newLoop(p, reg)

	out := loop.Run(context.Background())
	if out.Status != StatusCompleted {
		t.Fatalf("expected StatusCompleted, got %v (err=%v)", out.Status, out.Err)
	}
	if et.calls != 2 {
		t.Errorf("expected the tool to actually run twice before the loop guard kicked in, got %d", et.calls)
	}

	msgs := loop.Conversation.Messages()
	var sawLoopError bool
	for _, m := range msgs {
		for _, tr := range m.ToolResults {
			if tr.IsError && tr.Content == loopDetectedMessage {
				sawLoopError = true
			}
		}
	}
	if !sawLoopError {
		t.Error("expected a synthesized loop-detected error result")
	}
}

func TestRunRespectsMaxIterations(t *testing.T) {
	call := message.ToolCall{ID: "1", Name: "echo", Input: `{}`}
	reg := tool.NewRegistry()
	reg.Register(&echoTool{})

	p := &scriptedProvider{responses: []message.CompletionResponse{
		{StopReason: "tool_use", ToolCalls: []message.ToolCall{call}},
		{StopReason: "tool_use", ToolCalls: []message.ToolCall{{ID: "2", Name: "echo", Input: `{"n":2}`}}},
	}}
	loop := newLoop(p, reg)
	loop.MaxIterations = 1

	out := loop.Run(context.Background())
	if out.Status != StatusFailed {
		t.Fatalf("expected StatusFailed from exceeding the iteration cap, got %v", out.Status)
	}
}

func TestRunInterruptedByCancelledContext(t *testing.T) {
	p := &scriptedProvider{responses: []message.CompletionResponse{{Content: "hi", StopReason: "end_turn"}}}
	loop := newLoop(p, tool.NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := loop.Run(ctx)
	if out.Status != StatusInterrupted {
		t.Fatalf("expected StatusInterrupted, got %v", out.Status)
	}
}

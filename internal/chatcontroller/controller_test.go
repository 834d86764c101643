package chatcontroller

import (
	"context"
	"testing"

	"github.com/coreagent/gencore/internal/contextstore"
	"github.com/coreagent/gencore/internal/eventbus"
	"github.com/coreagent/gencore/internal/message"
	"github.com/coreagent/gencore/internal/permission"
	"github.com/coreagent/gencore/internal/provider"
	"github.com/coreagent/gencore/internal/tool"
)

type scriptedProvider struct {
	responses []message.CompletionResponse
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
		if idx >= len(p.responses) {
			ch <- message.StreamChunk{Type: message.ChunkTypeDone, Response: &message.CompletionResponse{StopReason: "end_turn"}}
			return
		}
		resp := p.responses[idx]
		ch <- message.StreamChunk{Type: message.ChunkTypeDone, Response: &resp}
	}()
	return ch
}

func newController(p provider.LlmProvider) *Controller {
	conv := message.NewConversation(nil)
	conv.SetSystem("you are a test agent")
	return &Controller{
		Provider:     p,
		Model:        "test-model",
		MaxTokens:    4096,
		Conversation: conv,
		Store:        contextstore.NewStore(),
		Tools:        tool.NewRegistry(),
		Broker:       permission.NewBroker(nil),
		Bus:          eventbus.New(),
		Cwd:          "/tmp",
	}
}

func TestHandleLineEmpty(t *testing.T) {
	c := newController(&scriptedProvider{})
	out := c.HandleLine(context.Background(), "   ")
	if out.Kind != KindEmpty {
		t.Fatalf("expected KindEmpty, got %v", out.Kind)
	}
}

func TestHandleLineExit(t *testing.T) {
	c := newController(&scriptedProvider{})
	for _, line := range []string{"exit", "quit", "EXIT"} {
		if out := c.HandleLine(context.Background(), line); out.Kind != KindExit {
			t.Errorf("expected KindExit for %q, got %v", line, out.Kind)
		}
	}
}

func TestHandleLineClearCommand(t *testing.T) {
	c := newController(&scriptedProvider{})
	c.Conversation.Push(message.UserMessage("hi", nil))
	c.Store.StoreMessage("user", "hi", 0)

	out := c.HandleLine(context.Background(), "/clear")
	if out.Kind != KindCommandReply {
		t.Fatalf("expected KindCommandReply, got %v", out.Kind)
	}
	if c.Conversation.Len() != 0 {
		t.Errorf("expected conversation cleared, got %d messages", c.Conversation.Len())
	}
	if st := c.Store.Stats(); st.Hot+st.Warm+st.Cold != 0 {
		t.Errorf("expected context store cleared, got %+v", st)
	}
}

func TestHandleLineModelCommand(t *testing.T) {
	c := newController(&scriptedProvider{})

	out := c.HandleLine(context.Background(), "/model")
	if out.Text != "current model: test-model" {
		t.Errorf("unexpected reply: %q", out.Text)
	}

	out = c.HandleLine(context.Background(), "/model gpt-5")
	if c.Model != "gpt-5" {
		t.Errorf("expected model updated to gpt-5, got %q", c.Model)
	}
	if out.Kind != KindCommandReply {
		t.Errorf("expected KindCommandReply, got %v", out.Kind)
	}
}

func TestHandleLineUnknownCommand(t *testing.T) {
	c := newController(&scriptedProvider{})
	out := c.HandleLine(context.Background(), "/bogus")
	if out.Kind != KindCommandReply {
		t.Fatalf("expected KindCommandReply, got %v", out.Kind)
	}
	if out.Text == "" {
		t.Error("expected a non-empty hint for an unknown command")
	}
}

func TestHandleLinePlainTextRunsTurn(t *testing.T) {
	p := &scriptedProvider{responses: []message.CompletionResponse{
		{Content: "hello back", StopReason: "end_turn"},
	}}
	c := newController(p)

	out := c.HandleLine(context.Background(), "hello")
	if out.Kind != KindTurnCompleted {
		t.Fatalf("expected KindTurnCompleted, got %v (text=%q)", out.Kind, out.Text)
	}
	if out.Text != "hello back" {
		t.Errorf("unexpected summary: %q", out.Text)
	}
	if c.Conversation.Len() != 2 {
		t.Errorf("expected 2 messages after the turn, got %d", c.Conversation.Len())
	}
}

func TestHandleLineTurnInterruptedByCancel(t *testing.T) {
	p := &scriptedProvider{responses: []message.CompletionResponse{
		{Content: "hi", StopReason: "end_turn"},
	}}
	c := newController(p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := c.HandleLine(ctx, "hello")
	if out.Kind != KindTurnInterrupted {
		t.Fatalf("expected KindTurnInterrupted, got %v", out.Kind)
	}
}

func TestCancelIsNoOpWithoutAnInFlightTurn(t *testing.T) {
	c := newController(&scriptedProvider{})
	c.Cancel() // must not panic
}

func TestShellShortcutWithoutRegisteredTool(t *testing.T) {
	c := newController(&scriptedProvider{})
	out := c.HandleLine(context.Background(), ">echo hi")
	if out.Kind != KindCommandReply {
		t.Fatalf("expected KindCommandReply, got %v", out.Kind)
	}
	if out.Text != "shell tool is not registered" {
		t.Errorf("unexpected reply: %q", out.Text)
	}
}

package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coreagent/gencore/internal/eventbus"
	"github.com/coreagent/gencore/internal/message"
	"github.com/coreagent/gencore/internal/permission"
	"github.com/coreagent/gencore/internal/provider"
	"github.com/coreagent/gencore/internal/tool"
)

// scriptedProvider is safe for concurrent Stream calls: call is advanced
// atomically so multiple sub-agents spawned in parallel each get a
// distinct, in-order response.
type scriptedProvider struct {
	responses []message.CompletionResponse
	call      int64
}

func (p *scriptedProvider) Name() string { return "scripted" }
func (p *scriptedProvider) AvailableModels(ctx context.Context) ([]provider.ModelInfo, error) {
	return nil, nil
}
func (p *scriptedProvider) SupportsModel(id string) bool { return true }
func (p *scriptedProvider) GetModelInfo(id string) (provider.ModelInfo, bool) {
	return provider.ModelInfo{ID: id, ContextWindow: 100000}, true
}
func (p *scriptedProvider) CountTokens(text string) int { return len(text)/4 + 1 }

func (p *scriptedProvider) Complete(ctx context.Context, req provider.CompletionRequest) (message.CompletionResponse, error) {
	return provider.Complete(ctx, p, req)
}

func (p *scriptedProvider) Stream(ctx context.Context, req provider.CompletionRequest) <-chan message.StreamChunk {
	ch := make(chan message.StreamChunk, 1)
	idx := int(atomic.AddInt64(&p.call, 1) - 1)
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

func newScheduler(p provider.LlmProvider, reg *tool.Registry, rc *TokenRateCoordinator) *Scheduler {
	return &Scheduler{
		Provider:        p,
		Model:           "test-model",
		MaxTokens:       4096,
		Registry:        reg,
		Broker:          permission.NewBroker(nil),
		Bus:             eventbus.New(),
		RateCoordinator: rc,
		Cwd:             "/tmp",
	}
}

func TestSpawnAgentCompletes(t *testing.T) {
	p := &scriptedProvider{responses: []message.CompletionResponse{
		{Content: "explored the repo, found 3 handlers", StopReason: "end_turn"},
	}}
	sched := newScheduler(p, tool.NewRegistry(), nil)

	out := sched.Tool().Execute(context.Background(), "tc1", map[string]any{
		"task":       "find all HTTP handlers",
		"agent_type": "explore",
	}, tool.Context{Cwd: "/tmp"})

	if out.IsError {
		t.Fatalf("expected success, got error result: %s", out.Content)
	}
	if out.Content != "explored the repo, found 3 handlers" {
		t.Errorf("unexpected summary content: %s", out.Content)
	}
}

func TestSpawnAgentRequiresTask(t *testing.T) {
	sched := newScheduler(&scriptedProvider{}, tool.NewRegistry(), nil)

	out := sched.Tool().Execute(context.Background(), "tc1", map[string]any{}, tool.Context{Cwd: "/tmp"})
	if !out.IsError {
		t.Fatal("expected an error result when task is missing")
	}
}

func TestSpawnAgentExcludesSpawnToolFromChild(t *testing.T) {
	reg := tool.NewRegistry()
	sched := newScheduler(&scriptedProvider{responses: []message.CompletionResponse{{Content: "done", StopReason: "end_turn"}}}, reg, nil)
	reg.Register(sched.Tool())

	narrowed := reg.Without(spawnToolName)
	if _, ok := narrowed.Get(spawnToolName); ok {
		t.Fatal("expected spawn_agent to be excluded from the narrowed registry")
	}
}

func TestTokenRateCoordinatorAdmitsUnderCap(t *testing.T) {
	c := NewTokenRateCoordinator(1000)
	d := c.Reserve(500)
	if !d.Ready {
		t.Fatal("expected reservation under the cap to be ready")
	}
	c.Record(500)

	d2 := c.Reserve(600)
	if d2.Ready {
		t.Fatal("expected reservation that would exceed the cap to wait")
	}
	if d2.Deficit != 100 {
		t.Errorf("expected deficit 100, got %d", d2.Deficit)
	}
	if d2.Wait <= 0 {
		t.Error("expected a positive wait duration")
	}
}

func TestTokenRateCoordinatorPrunesExpiredSamples(t *testing.T) {
	c := NewTokenRateCoordinator(100)
	c.mu.Lock()
	c.samples = append(c.samples, sample{at: time.Now().Add(-2 * time.Minute), tokens: 90})
	c.mu.Unlock()

	d := c.Reserve(50)
	if !d.Ready {
		t.Fatal("expected the expired sample to be pruned, freeing the budget")
	}
}

func TestSpawnManyReturnsOneResultPerRequest(t *testing.T) {
	p := &scriptedProvider{responses: []message.CompletionResponse{
		{Content: "a", StopReason: "end_turn"},
		{Content: "b", StopReason: "end_turn"},
		{Content: "c", StopReason: "end_turn"},
	}}
	sched := newScheduler(p, tool.NewRegistry(), nil)

	results := sched.SpawnMany(context.Background(), []SpawnRequest{
		{Task: "task a", AgentType: "general-purpose"},
		{Task: "task b", AgentType: "general-purpose"},
		{Task: "task c", AgentType: "general-purpose"},
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	seen := map[string]bool{}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("unexpected error: %v", r.Err)
		}
		seen[r.Summary] = true
	}
	for _, want := range []string{"a", "b", "c"} {
		if !seen[want] {
			t.Errorf("expected a result with summary %q", want)
		}
	}
}

func TestNilTokenRateCoordinatorAlwaysReady(t *testing.T) {
	var c *TokenRateCoordinator
	d := c.Reserve(1_000_000)
	if !d.Ready {
		t.Fatal("expected a nil coordinator to always admit")
	}
	c.Record(1_000_000) // must not panic
}

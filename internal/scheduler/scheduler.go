package scheduler

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"

	"github.com/coreagent/gencore/internal/agentloop"
	"github.com/coreagent/gencore/internal/contextstore"
	"github.com/coreagent/gencore/internal/eventbus"
	"github.com/coreagent/gencore/internal/log"
	"github.com/coreagent/gencore/internal/message"
	"github.com/coreagent/gencore/internal/permission"
	"github.com/coreagent/gencore/internal/provider"
	"github.com/coreagent/gencore/internal/tool"
)

// maxConcurrentSpawns bounds how many sub-agents SpawnMany runs at once,
// so a burst of spawn requests can't exhaust the provider connection pool
// or the token-rate budget all at once.
const maxConcurrentSpawns = 4

// spawnToolName is excluded from every sub-agent's own registry so agents
// can't recursively spawn agents.
const spawnToolName = "spawn_agent"

// Scheduler owns everything a spawn_agent call needs to launch and run a
// sub-agent: the parent's model/provider settings, its tool registry and
// permission broker (both narrowed before being handed to the child), the
// shared event bus sub-agents report progress on, and the token-rate
// coordinator that admits every sub-agent's provider calls against one
// shared budget.
type Scheduler struct {
	Provider    provider.LlmProvider
	Model       string
	MaxTokens   int
	Temperature float64

	Registry *tool.Registry
	Broker   *permission.Broker
	Bus      eventbus.Bus

	RateCoordinator *TokenRateCoordinator

	// Cwd is the working directory handed to every sub-agent's tools.
	Cwd string
	// DefaultMaxIterations overrides defaultIterationCap when positive.
	DefaultMaxIterations int
}

// Tool returns the spawn_agent tool.Tool wired against this scheduler.
func (s *Scheduler) Tool() tool.Tool {
	return &spawnAgentTool{s: s}
}

type spawnAgentTool struct{ s *Scheduler }

func (t *spawnAgentTool) Name() string { return spawnToolName }

func (t *spawnAgentTool) Definition() tool.Definition {
	return tool.Definition{
		Name:        spawnToolName,
		Description: "Delegate a self-contained task to a sub-agent that runs its own tool loop and reports back a summary. Use for work that can proceed independently of the current conversation.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"task":          map[string]any{"type": "string", "description": "The task for the sub-agent to complete"},
				"agent_type":    map[string]any{"type": "string", "description": "general-purpose, explore, or review"},
				"context_files": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Paths the sub-agent should read first"},
			},
			"required": []string{"task"},
		},
	}
}

func (t *spawnAgentTool) RequiresPermission() bool { return false }

func (t *spawnAgentTool) PermissionRequest(args map[string]any) *permission.Request { return nil }

func (t *spawnAgentTool) Execute(ctx context.Context, toolUseID string, args map[string]any, tc tool.Context) tool.Result {
	task, ok := tool.Str(args, "task")
	if !ok || strings.TrimSpace(task) == "" {
		return tool.ErrorResult(toolUseID, "task is required")
	}
	agentTypeName, _ := tool.Str(args, "agent_type")
	var contextFiles []string
	if raw, ok := args["context_files"].([]any); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				contextFiles = append(contextFiles, s)
			}
		}
	}

	agentID := uuid.NewString()
	at := resolveAgentType(agentTypeName)

	outcome := t.s.runSubAgent(ctx, agentID, at, task, contextFiles)

	switch outcome.status {
	case statusCompleted:
		return tool.OKResult(toolUseID, outcome.summary)
	case statusCancelled:
		return tool.ErrorResult(toolUseID, "sub-agent cancelled")
	default:
		return tool.ErrorResult(toolUseID, "sub-agent failed: "+outcome.err)
	}
}

type subAgentStatus int

const (
	statusCompleted subAgentStatus = iota
	statusFailed
	statusCancelled
)

type subAgentOutcome struct {
	status  subAgentStatus
	summary string
	err     string
}

// runSubAgent builds and runs one bounded agentloop.Loop to completion,
// publishing the full AgentSpawned/AgentProgress/.../terminal event sequence
// along the way. It never touches the parent's conversation — the child
// carries its own from a fresh system prompt and the task text.
func (s *Scheduler) runSubAgent(ctx context.Context, agentID string, at AgentType, task string, contextFiles []string) subAgentOutcome {
	log.Logger().Info("spawning sub-agent", zap.String("agentID", agentID), zap.String("agentType", at.Name))
	s.Bus.Publish(eventbus.AgentSpawned(agentID, at.Name, at.Name))

	registry := s.Registry.Without(spawnToolName)
	if len(at.AllowTools) > 0 {
		registry = narrowRegistry(registry, at.AllowTools)
	}

	broker := s.Broker.Derive()

	conv := message.NewConversation(nil)
	conv.SetSystem(buildSubAgentSystemPrompt(at, contextFiles))
	conv.Push(message.UserMessage(task, nil))

	maxIter := s.DefaultMaxIterations
	if maxIter <= 0 {
		maxIter = defaultIterationCap
	}

	estimated := s.Provider.CountTokens(task + at.Prompt)
	if !s.reserve(ctx, agentID, estimated) {
		s.Bus.Publish(eventbus.AgentCancelled(agentID))
		return subAgentOutcome{status: statusCancelled}
	}

	// Each sub-agent gets its own ContextStore: its tool-call chunks are
	// for its own observability, not folded into the parent's store — the
	// parent only ever sees the single summary spawn_agent returns.
	store := contextstore.NewStore()

	loop := &agentloop.Loop{
		Provider:      s.Provider,
		Model:         s.Model,
		MaxTokens:     s.MaxTokens,
		Temperature:   s.Temperature,
		Conversation:  conv,
		Tools:         registry,
		Broker:        broker,
		Bus:           s.Bus,
		Store:         store,
		Cwd:           s.Cwd,
		AgentID:       agentID,
		MaxIterations: maxIter,
	}

	done := make(chan agentloop.Outcome, 1)
	go func() { done <- loop.Run(ctx) }()

	var result agentloop.Outcome
	progress := 0
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
waitLoop:
	for {
		select {
		case result = <-done:
			break waitLoop
		case <-ticker.C:
			progress++
			s.Bus.Publish(eventbus.AgentProgress(agentID, progress, maxIter, "working"))
		}
	}

	used := s.Provider.CountTokens(message.BuildConversationText(conv.Messages()))
	s.record(agentID, used)

	switch result.Status {
	case agentloop.StatusCompleted:
		log.Logger().Info("sub-agent completed", zap.String("agentID", agentID), zap.Int("iterations", result.Iterations))
		s.Bus.Publish(eventbus.AgentCompleted(agentID, nil, result.Summary))
		return subAgentOutcome{status: statusCompleted, summary: result.Summary}
	case agentloop.StatusInterrupted:
		log.Logger().Info("sub-agent cancelled", zap.String("agentID", agentID), zap.Int("iterations", result.Iterations))
		s.Bus.Publish(eventbus.AgentCancelled(agentID))
		return subAgentOutcome{status: statusCancelled}
	default:
		errText := "unknown error"
		if result.Err != nil {
			errText = result.Err.Error()
		}
		log.Logger().Warn("sub-agent failed", zap.String("agentID", agentID), zap.Int("iterations", result.Iterations), zap.String("error", errText))
		s.Bus.Publish(eventbus.AgentFailed(agentID, errText))
		return subAgentOutcome{status: statusFailed, err: errText}
	}
}

// SpawnRequest is one sub-agent to launch via SpawnMany.
type SpawnRequest struct {
	Task         string
	AgentType    string
	ContextFiles []string
}

// SpawnResult is one sub-agent's outcome from SpawnMany, paired with its
// assigned AgentID so a caller can correlate it back to its request.
type SpawnResult struct {
	AgentID string
	Summary string
	Err     error
}

// SpawnMany launches every request as its own sub-agent, running up to
// maxConcurrentSpawns of them at once via errgroup, and returns one result
// per request in the same order. This is the concurrent-fan-out path spec
// §4.2 describes ("multiple sub-agents may run in parallel") for callers
// that want to launch a batch in one call; the spawn_agent tool itself
// still launches one sub-agent per tool call, since a single AgentLoop
// turn's tool calls are executed in order today (see DESIGN.md Pending).
func (s *Scheduler) SpawnMany(ctx context.Context, reqs []SpawnRequest) []SpawnResult {
	results := make([]SpawnResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSpawns)

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			agentID := uuid.NewString()
			at := resolveAgentType(req.AgentType)
			outcome := s.runSubAgent(gctx, agentID, at, req.Task, req.ContextFiles)
			r := SpawnResult{AgentID: agentID, Summary: outcome.summary}
			if outcome.status != statusCompleted {
				r.Err = errSubAgentNotCompleted(outcome)
			}
			results[i] = r
			return nil
		})
	}
	_ = g.Wait() // each goroutine reports its own error via SpawnResult, never fails the group

	return results
}

func errSubAgentNotCompleted(o subAgentOutcome) error {
	if o.status == statusCancelled {
		return errCancelled
	}
	return &subAgentError{msg: o.err}
}

type subAgentError struct{ msg string }

func (e *subAgentError) Error() string { return e.msg }

var errCancelled = &subAgentError{msg: "sub-agent cancelled"}

// reserve blocks (honoring ctx cancellation) until the rate coordinator
// admits n tokens, emitting AgentRateLimited while it waits. Returns false
// if ctx is cancelled before admission.
func (s *Scheduler) reserve(ctx context.Context, agentID string, n int) bool {
	for {
		d := s.RateCoordinator.Reserve(n)
		if d.Ready {
			return true
		}
		log.Logger().Debug("sub-agent rate limited", zap.String("agentID", agentID), zap.Duration("wait", d.Wait), zap.Int("deficit", d.Deficit))
		s.Bus.Publish(eventbus.AgentRateLimited(agentID, d.Wait.Seconds(), d.Deficit))
		select {
		case <-ctx.Done():
			return false
		case <-time.After(d.Wait):
		}
	}
}

func (s *Scheduler) record(agentID string, n int) {
	s.RateCoordinator.Record(n)
}

func buildSubAgentSystemPrompt(at AgentType, contextFiles []string) string {
	var sb strings.Builder
	sb.WriteString(at.Prompt)
	if len(contextFiles) > 0 {
		sb.WriteString("\n\nRelevant files to start from:\n")
		for _, f := range contextFiles {
			sb.WriteString("- " + f + "\n")
		}
	}
	return sb.String()
}

// narrowRegistry builds a registry containing only the named tools, drawn
// from base. Unknown names are skipped rather than erroring, since
// AgentType.AllowTools is a fixed built-in list that should degrade
// gracefully if a tool gets renamed.
func narrowRegistry(base *tool.Registry, names []string) *tool.Registry {
	out := tool.NewRegistry()
	for _, n := range names {
		if t, ok := base.Get(n); ok {
			out.Register(t)
		}
	}
	return out
}

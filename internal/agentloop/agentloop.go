// Package agentloop implements the single-agent turn loop: stream a
// completion, execute any requested tools, feed the results back, and
// repeat until the model stops asking for tools or the turn fails. Both the
// top-level chat loop and every sub-agent spawned by the scheduler run
// through this same Loop, differing only in MaxIterations and in the tool
// registry each is handed.
package agentloop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreagent/gencore/internal/contextstore"
	"github.com/coreagent/gencore/internal/eventbus"
	"github.com/coreagent/gencore/internal/log"
	"github.com/coreagent/gencore/internal/message"
	"github.com/coreagent/gencore/internal/permission"
	"github.com/coreagent/gencore/internal/provider"
	"github.com/coreagent/gencore/internal/tool"
	"go.uber.org/zap"
)

// interIterationDelay is paced between iterations so a runaway tool-call
// cycle doesn't hammer the provider or the filesystem back to back.
const interIterationDelay = 500 * time.Millisecond

// defaultContextWindow is used when neither the provider's model info nor
// the overflow error itself reports a usable window size.
const defaultContextWindow = 128000

// overflowTargetFraction is the fraction of the context window TrimToFit
// aims for after a ContextTooLongError, leaving headroom for the retried
// request plus its response.
const overflowTargetFraction = 0.7

// Status is the terminal state a Run call ends in.
type Status int

const (
	// StatusCompleted means the model produced a final answer with no
	// further tool calls pending.
	StatusCompleted Status = iota
	// StatusFailed means an unrecoverable error ended the turn; the
	// conversation has been rolled back to its pre-turn state.
	StatusFailed
	// StatusInterrupted means the caller's context was cancelled; the
	// conversation has been rolled back to its pre-turn state.
	StatusInterrupted
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Outcome is the result of one Run call.
type Outcome struct {
	Status     Status
	Summary    string // final assistant text, set only on StatusCompleted
	Iterations int
	Err        error // set on StatusFailed/StatusInterrupted
}

// Loop drives one agent's turn to completion against a conversation log,
// a tool registry, and a permission broker. A Loop is not reused across
// concurrent Run calls.
type Loop struct {
	Provider    provider.LlmProvider
	Model       string
	MaxTokens   int
	Temperature float64

	Conversation *message.Conversation
	Tools        *tool.Registry
	Broker       *permission.Broker
	Bus          eventbus.Bus
	// Store receives one chunk per tool execution (see toolexec.go). Nil is
	// valid — a Loop run without a ContextStore simply logs no chunks.
	Store *contextstore.Store

	// Cwd is the working directory handed to every tool invocation.
	Cwd string
	// AgentID identifies this loop for event attribution. Empty for the
	// top-level chat loop; set to the sub-agent's ID by the scheduler.
	AgentID string
	// MaxIterations caps the number of provider round-trips this Run call
	// will make. Zero means unbounded (the top-level chat loop); the
	// scheduler sets this to each sub-agent's iteration ceiling.
	MaxIterations int

	// recentCalls is the loop-detection FIFO of (name, args) keys; see
	// toolexec.go.
	recentCalls []string
}

// Run drives iterations until the model stops requesting tools, the
// iteration cap is hit, the context is cancelled, or an unrecoverable error
// occurs. Exactly one of StatusCompleted/StatusFailed/StatusInterrupted is
// returned.
func (l *Loop) Run(ctx context.Context) Outcome {
	iteration := 0
	preTurnLen := l.Conversation.Len()

	for {
		iteration++
		if l.MaxIterations > 0 && iteration > l.MaxIterations {
			log.Logger().Warn("agent loop exceeded iteration cap",
				zap.String("agentID", l.AgentID), zap.Int("maxIterations", l.MaxIterations))
			l.Conversation.Truncate(preTurnLen)
			return Outcome{
				Status:     StatusFailed,
				Iterations: iteration - 1,
				Err:        fmt.Errorf("exceeded iteration cap (%d)", l.MaxIterations),
			}
		}

		if err := ctx.Err(); err != nil {
			l.Conversation.Truncate(preTurnLen)
			return Outcome{Status: StatusInterrupted, Iterations: iteration - 1, Err: err}
		}

		resp, err := l.stream(ctx)
		if err != nil {
			if cte, ok := provider.AsContextTooLong(err); ok {
				if !l.recoverFromOverflow(cte) {
					l.Conversation.Truncate(preTurnLen)
					log.Logger().Warn("agent loop failed after context overflow", zap.String("agentID", l.AgentID), zap.Error(err))
					return Outcome{Status: StatusFailed, Iterations: iteration - 1, Err: err}
				}
				resp, err = l.stream(ctx)
			}
		}
		if err != nil {
			l.Conversation.Truncate(preTurnLen)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Logger().Info("agent loop interrupted", zap.String("agentID", l.AgentID), zap.Int("iteration", iteration))
				return Outcome{Status: StatusInterrupted, Iterations: iteration - 1, Err: err}
			}
			log.Logger().Warn("agent loop failed", zap.String("agentID", l.AgentID), zap.Int("iteration", iteration), zap.Error(err))
			return Outcome{Status: StatusFailed, Iterations: iteration - 1, Err: err}
		}

		l.Conversation.Push(message.AssistantMessage(resp.Content, resp.Thinking, resp.ToolCalls))

		if len(resp.ToolCalls) == 0 {
			log.Logger().Debug("agent loop completed", zap.String("agentID", l.AgentID), zap.Int("iterations", iteration))
			return Outcome{Status: StatusCompleted, Iterations: iteration, Summary: resp.Content}
		}

		results := l.execCalls(ctx, resp.ToolCalls)
		l.Conversation.Push(message.CarrierMessage(results))

		if err := ctx.Err(); err != nil {
			l.Conversation.Truncate(preTurnLen)
			log.Logger().Info("agent loop interrupted", zap.String("agentID", l.AgentID), zap.Int("iteration", iteration))
			return Outcome{Status: StatusInterrupted, Iterations: iteration, Err: err}
		}

		select {
		case <-ctx.Done():
			l.Conversation.Truncate(preTurnLen)
			log.Logger().Info("agent loop interrupted", zap.String("agentID", l.AgentID), zap.Int("iteration", iteration))
			return Outcome{Status: StatusInterrupted, Iterations: iteration, Err: ctx.Err()}
		case <-time.After(interIterationDelay):
		}
	}
}

// stream runs one provider round-trip through the retry wrapper, publishing
// StreamStart/StreamDelta/StreamEnd events as chunks arrive.
func (l *Loop) stream(ctx context.Context) (message.CompletionResponse, error) {
	req := l.buildRequest()
	l.publish(eventbus.StreamStart())

	var resp message.CompletionResponse
	for chunk := range provider.StreamWithRetry(ctx, l.Provider, req) {
		switch chunk.Type {
		case message.ChunkTypeText:
			resp.Content += chunk.Text
			l.publish(eventbus.StreamDelta(chunk.Text))
		case message.ChunkTypeThinking:
			resp.Thinking += chunk.Text
		case message.ChunkTypeDone:
			if chunk.Response != nil {
				resp = *chunk.Response
			}
			l.publish(eventbus.StreamEnd())
			return resp, nil
		case message.ChunkTypeError:
			return resp, chunk.Error
		}
	}
	l.publish(eventbus.StreamEnd())
	return resp, nil
}

func (l *Loop) buildRequest() provider.CompletionRequest {
	return provider.CompletionRequest{
		Model:        l.Model,
		Messages:     l.Conversation.Messages(),
		SystemPrompt: l.Conversation.System(),
		MaxTokens:    l.MaxTokens,
		Temperature:  l.Temperature,
		Tools:        l.toolDefinitions(),
	}
}

func (l *Loop) toolDefinitions() []provider.ToolDefinition {
	if l.Tools == nil {
		return nil
	}
	defs := l.Tools.Definitions()
	out := make([]provider.ToolDefinition, len(defs))
	for i, d := range defs {
		out[i] = provider.ToolDefinition{Name: d.Name, Description: d.Description, InputSchema: d.InputSchema}
	}
	return out
}

// recoverFromOverflow trims the conversation to overflowTargetFraction of
// the model's context window so the caller can retry the same iteration
// once. It reports whether any messages were actually removed — if the
// conversation is already minimal, retrying would just overflow again, so
// the caller should fail instead.
func (l *Loop) recoverFromOverflow(err *provider.ContextTooLongError) bool {
	window := err.Limit
	if info, ok := l.Provider.GetModelInfo(l.Model); ok && info.ContextWindow > 0 {
		window = info.ContextWindow
	}
	if window <= 0 {
		window = defaultContextWindow
	}
	target := int(float64(window) * overflowTargetFraction)

	removed := l.Conversation.TrimToFit(target)
	l.publish(eventbus.StatusEvent(fmt.Sprintf("trimmed %d older messages after a context-overflow response", removed)))
	return removed > 0
}

func (l *Loop) publish(ev eventbus.ChatEvent) {
	if l.AgentID != "" {
		ev.AgentID = l.AgentID
	}
	l.Bus.Publish(ev)
}

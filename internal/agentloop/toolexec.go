package agentloop

import (
	"context"

	"github.com/coreagent/gencore/internal/eventbus"
	"github.com/coreagent/gencore/internal/message"
	"github.com/coreagent/gencore/internal/permission"
	"github.com/coreagent/gencore/internal/tool"
)

// loopDetectionWindow bounds the FIFO of recent (name, args) call keys kept
// for repetition detection. Only the last two entries are ever compared
// against the call about to run, but the cap keeps memory bounded across a
// very long turn.
const loopDetectionWindow = 10

const loopDetectedMessage = "LOOP DETECTED: this exact tool call has been made repeatedly with no new information between attempts. Stop repeating it and try a different approach."

// execCalls runs every tool call from one assistant turn in order, carrying
// a shared loop-detection history across them, and returns their results in
// the same order so the caller can build one carrier message.
func (l *Loop) execCalls(ctx context.Context, calls []message.ToolCall) []message.ToolResult {
	results := make([]message.ToolResult, 0, len(calls))
	for _, tc := range calls {
		results = append(results, l.execOne(ctx, tc))
	}
	return results
}

func callKey(tc message.ToolCall) string {
	return tc.Name + "\x00" + tc.Input
}

// execOne runs a single tool call, short-circuiting with a synthesized
// error result if it is the third consecutive identical call, otherwise
// consulting the permission broker before executing.
func (l *Loop) execOne(ctx context.Context, tc message.ToolCall) message.ToolResult {
	key := callKey(tc)
	n := len(l.recentCalls)
	if n >= 2 && l.recentCalls[n-1] == key && l.recentCalls[n-2] == key {
		l.recentCalls = nil
		l.publish(eventbus.ToolCallEnd(tc.ID, tc.Name, true))
		return message.ErrorResult(tc, loopDetectedMessage)
	}

	l.publish(eventbus.ToolCallStart(tc.ID, tc.Name))
	result := l.runTool(ctx, tc)
	l.publish(eventbus.ToolCallEnd(tc.ID, tc.Name, result.IsError))

	l.recentCalls = append(l.recentCalls, key)
	if len(l.recentCalls) > loopDetectionWindow {
		l.recentCalls = l.recentCalls[len(l.recentCalls)-loopDetectionWindow:]
	}

	return message.ToolResult{ToolCallID: tc.ID, ToolName: tc.Name, Content: result.Content, IsError: result.IsError}
}

// runTool parses the call's arguments, gates on permission if required, and
// executes it. Unknown tools, malformed input, and permission denial are
// all reported as ordinary error results, never a Go error, so the model
// can read the failure and adjust.
func (l *Loop) runTool(ctx context.Context, tc message.ToolCall) tool.Result {
	t, ok := l.Tools.Get(tc.Name)
	if !ok {
		return tool.ErrorResult(tc.ID, "unknown tool: "+tc.Name)
	}

	args, err := message.ParseToolInput(tc.Input)
	if err != nil {
		return tool.ErrorResult(tc.ID, "invalid tool input: "+err.Error())
	}

	if t.RequiresPermission() && l.Broker != nil && l.Broker.NeedsPermission(t.Name()) {
		req := t.PermissionRequest(args)
		if req == nil {
			req = &permission.Request{ToolName: t.Name()}
		}
		if !l.Broker.RequestPermission(*req) {
			return tool.ErrorResult(tc.ID, "permission denied for "+t.Name())
		}
	}

	tctx := tool.Context{Cwd: l.Cwd, Broker: l.Broker, AgentID: l.AgentID, Store: l.Store}
	result := t.Execute(ctx, tc.ID, args, tctx)

	if l.Store != nil {
		l.Store.StoreToolCall(tc.Name, tc.Input, result.Content, result.IsError, 0)
	}

	return result
}

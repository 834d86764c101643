// Package tool defines the contract every built-in and sub-agent tool
// implements: a canonical name, a JSON-schema definition for the provider,
// a permission gate, and the execute call itself.
package tool

import (
	"context"

	"github.com/coreagent/gencore/internal/contextstore"
	"github.com/coreagent/gencore/internal/permission"
)

// Definition is the provider-facing shape of a tool: what the model sees
// when deciding whether and how to call it.
type Definition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Result is what a tool execution produces. Tools never panic or return a
// Go error for bad input — a validation failure is just a Result with
// IsError set, so the model can read it and try again.
type Result struct {
	ToolUseID string
	IsError   bool
	Content   string
}

// ErrorResult builds a failed Result with an actionable message.
func ErrorResult(toolUseID, msg string) Result {
	return Result{ToolUseID: toolUseID, IsError: true, Content: msg}
}

// OKResult builds a successful Result.
func OKResult(toolUseID, content string) Result {
	return Result{ToolUseID: toolUseID, Content: content}
}

// Context carries the per-invocation environment a tool needs: the working
// directory and the permission broker guarding side effects. AgentID is set
// when the call originates from a sub-agent, for logging/attribution only.
// Store is the owning loop's ContextStore, given to tools that want to read
// recent history or log extra chunks of their own; it may be nil and every
// caller must treat it as optional.
type Context struct {
	Cwd     string
	Broker  *permission.Broker
	AgentID string
	Store   *contextstore.Store
}

// Tool is the full contract a registered tool satisfies.
type Tool interface {
	Name() string
	Definition() Definition
	RequiresPermission() bool
	// PermissionRequest prepares the confirmation prompt for this call, or
	// nil if RequiresPermission is false or the request cannot be prepared
	// (e.g. missing required argument — Execute will report that instead).
	PermissionRequest(args map[string]any) *permission.Request
	Execute(ctx context.Context, toolUseID string, args map[string]any, tc Context) Result
}

// Str looks up the first present string argument among the given synonym
// keys. Model outputs vary in what they name a parameter, so tools bind
// leniently rather than requiring one exact key.
func Str(args map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := args[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// Bool looks up the first present bool argument among the given keys.
func Bool(args map[string]any, keys ...string) bool {
	for _, k := range keys {
		if v, ok := args[k]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
	}
	return false
}

// Int looks up the first present numeric argument among the given keys,
// tolerating both json.Number-style float64 and plain int decoding.
func Int(args map[string]any, keys ...string) (int, bool) {
	for _, k := range keys {
		if v, ok := args[k]; ok {
			switch n := v.(type) {
			case float64:
				return int(n), true
			case int:
				return n, true
			}
		}
	}
	return 0, false
}

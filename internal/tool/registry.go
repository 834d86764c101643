package tool

import (
	"context"
	"strings"
	"sync"
)

// aliases maps the names models commonly emit onto the canonical tool name
// the registry actually holds. Model outputs are not consistent across
// providers, so lookups always go through this table first.
var aliases = map[string]string{
	"bash":       "shell",
	"sh":         "shell",
	"read_file":  "file_read",
	"cat":        "file_read",
	"read":       "file_read",
	"write_file": "file_write",
	"write":      "file_write",
	"edit_file":  "file_edit",
	"edit":       "file_edit",
	"search":     "grep",
	"find":       "glob",
}

// canonical resolves a requested name to the registry key it is stored
// under, following the alias table.
func canonical(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if c, ok := aliases[n]; ok {
		return c
	}
	return n
}

// Registry holds the tools available to an AgentLoop, resolving both
// canonical names and their aliases.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool under its canonical (lowercased) name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[strings.ToLower(t.Name())] = t
}

// Get resolves name (canonical or alias) to a registered Tool.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[canonical(name)]
	return t, ok
}

// Names returns every registered canonical tool name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Definitions returns the provider-facing schema for every registered tool,
// in the shape a CompletionRequest.Tools field expects.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, t.Definition())
	}
	return defs
}

// Without returns a copy of the registry with the given canonical names
// removed. Used by the sub-agent scheduler to exclude spawn_agent from a
// sub-agent's own tool set (spec §4.2).
func (r *Registry) Without(names ...string) *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	excl := make(map[string]bool, len(names))
	for _, n := range names {
		excl[canonical(n)] = true
	}
	out := NewRegistry()
	for name, t := range r.tools {
		if !excl[name] {
			out.tools[name] = t
		}
	}
	return out
}

// Execute resolves name and runs the tool, returning a synthesized error
// Result for an unknown tool rather than failing the caller.
func (r *Registry) Execute(ctx context.Context, toolUseID, name string, args map[string]any, tc Context) Result {
	t, ok := r.Get(name)
	if !ok {
		return ErrorResult(toolUseID, "unknown tool: "+name)
	}
	return t.Execute(ctx, toolUseID, args, tc)
}

// DefaultRegistry is the process-wide registry builtin tools register into.
var DefaultRegistry = NewRegistry()

// Register adds a tool to DefaultRegistry.
func Register(t Tool) {
	DefaultRegistry.Register(t)
}

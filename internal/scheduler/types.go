package scheduler

// AgentType describes one flavor of sub-agent the spawn_agent tool can
// launch: a short identity/system-prompt fragment and the tool names it is
// restricted to. Tool names are resolved against the parent registry at
// spawn time, so an unknown name here is silently dropped rather than
// failing the spawn.
type AgentType struct {
	Name        string
	Description string
	Prompt      string
	// AllowTools restricts the sub-agent to exactly this set. Empty means
	// every tool the parent has, minus spawn_agent itself.
	AllowTools []string
}

// defaultIterationCap is used when the scheduler wasn't configured with an
// override; spawn requests carry no iteration cap of their own.
const defaultIterationCap = 30

// builtinAgentTypes mirrors the small set of task-shaped specializations a
// caller can pick via agent_type. general-purpose is the fallback for any
// name that doesn't match one of these.
var builtinAgentTypes = map[string]AgentType{
	"general-purpose": {
		Name:        "general-purpose",
		Description: "Researches questions, searches code, and executes multi-step tasks with the full tool set.",
		Prompt:      "You are a sub-agent handling one delegated task. Work autonomously and return a concise summary of what you found or changed when done.",
	},
	"explore": {
		Name:        "explore",
		Description: "Read-only codebase exploration: finds files, searches code, answers questions about the codebase.",
		Prompt:      "You are a read-only exploration sub-agent. Answer the task using file_read, glob, and grep only; do not attempt to modify anything.",
		AllowTools:  []string{"file_read", "glob", "grep"},
	},
	"review": {
		Name:        "review",
		Description: "Reviews a diff or a set of files for bugs, risk, and style issues.",
		Prompt:      "You are a code-review sub-agent. Read the relevant files and report concrete issues; do not modify files.",
		AllowTools:  []string{"file_read", "glob", "grep", "shell"},
	},
}

// resolveAgentType looks up a known agent type, falling back to
// general-purpose for anything unrecognized so a typo in agent_type never
// hard-fails the spawn.
func resolveAgentType(name string) AgentType {
	if t, ok := builtinAgentTypes[name]; ok {
		return t
	}
	return builtinAgentTypes["general-purpose"]
}

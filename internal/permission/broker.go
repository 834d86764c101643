package permission

import "sync"

// Outcome is the caller's answer to a PermissionRequest, as returned by the
// confirmation callback passed to RequestPermission.
type Outcome int

const (
	// OutcomeAllow permits this single invocation only.
	OutcomeAllow Outcome = iota
	// OutcomeDeny rejects this single invocation only.
	OutcomeDeny
	// OutcomeAllowAll grants a session-wide waiver for this tool name.
	OutcomeAllowAll
	// OutcomeTrustAll switches the broker into trust mode: no further
	// prompts for any tool for the remainder of the session.
	OutcomeTrustAll
)

// Request describes one tool invocation awaiting a permission decision. The
// bare fields are the common projection every caller can read; Meta carries
// one of the richer, tool-specific shapes used to render the confirmation
// prompt in detail (a diff preview, a command line count, a fetch domain).
type Request struct {
	ToolName      string
	Description   string
	Paths         []string
	IsDestructive bool
	Meta          any // *EditMeta | *BashMeta | *WebMeta, or nil
}

// EditMeta carries a diff preview for file_edit/file_write permission prompts.
type EditMeta struct {
	Diff *Diff
}

// BashMeta carries a command preview for the shell tool's permission prompt.
type BashMeta struct {
	Command       string
	RunBackground bool
	LineCount     int
}

// WebMeta carries the target domain for web-fetch permission prompts.
type WebMeta struct {
	Domain string
}

// ConfirmFunc is consulted by RequestPermission when a decision cannot be
// resolved from existing state. It is typically wired to a TUI prompt or,
// in embedded/non-interactive mode, a function that always returns
// OutcomeDeny.
type ConfirmFunc func(req Request) Outcome

// autoApprovedReadOnly never requires a prompt: these tools cannot mutate
// anything, so asking the user would only add friction.
var autoApprovedReadOnly = map[string]bool{
	"file_read": true,
	"glob":      true,
	"grep":      true,
}

// Broker is the session-owned permission authority described by the spec:
// it tracks a set of tool names granted a session-wide allowance plus a
// global trust flag, and consults a confirmation callback exactly when
// neither applies.
type Broker struct {
	mu        sync.Mutex
	allowed   map[string]bool
	trustMode bool
	confirm   ConfirmFunc
}

// NewBroker creates a Broker. A nil confirm is valid: NeedsPermission will
// still resolve to false for auto-approved/allowed/trusted tools, but
// RequestPermission for anything else always denies.
func NewBroker(confirm ConfirmFunc) *Broker {
	return &Broker{allowed: make(map[string]bool), confirm: confirm}
}

// NewTrustedBroker creates a Broker that starts in trust mode — used to
// derive a sub-agent's broker when the parent was already trusted (spec
// §4.2: trust mode is inherited, never transitively granted otherwise).
func NewTrustedBroker() *Broker {
	return &Broker{allowed: make(map[string]bool), trustMode: true}
}

// NeedsPermission reports whether tool name requires a RequestPermission
// round-trip before executing.
func (b *Broker) NeedsPermission(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.trustMode {
		return false
	}
	if b.allowed[name] {
		return false
	}
	if autoApprovedReadOnly[name] {
		return false
	}
	return true
}

// RequestPermission consults the confirm callback (if set) and updates
// internal state according to the returned Outcome. It returns true when
// the current invocation is permitted to proceed.
func (b *Broker) RequestPermission(req Request) bool {
	b.mu.Lock()
	confirm := b.confirm
	b.mu.Unlock()

	if confirm == nil {
		return false
	}

	outcome := confirm(req)

	b.mu.Lock()
	defer b.mu.Unlock()
	switch outcome {
	case OutcomeAllow:
		return true
	case OutcomeAllowAll:
		b.allowed[req.ToolName] = true
		return true
	case OutcomeTrustAll:
		b.trustMode = true
		return true
	default:
		return false
	}
}

// TrustMode reports whether the broker has been switched into trust mode.
func (b *Broker) TrustMode() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.trustMode
}

// Derive builds the broker a spawned sub-agent should carry: trust mode
// only if the parent was already trusted, otherwise a fresh deny-by-default
// broker that is never prompted (sub-agents run unattended).
func (b *Broker) Derive() *Broker {
	if b.TrustMode() {
		return NewTrustedBroker()
	}
	return NewBroker(nil)
}

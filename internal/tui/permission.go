package tui

import (
	"fmt"
	"strings"

	"github.com/coreagent/gencore/internal/permission"
)

// permissionPrompt is the live state of a permission.Request awaiting a
// keypress answer. resp is closed over by the confirm callback passed to
// permission.NewBroker in Run; answering the prompt sends on it exactly
// once and nothing else ever reads from it.
type permissionPrompt struct {
	req  permission.Request
	resp chan<- permission.Outcome
}

func (p *permissionPrompt) render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "permission requested: %s\n", p.req.ToolName)
	if p.req.Description != "" {
		fmt.Fprintf(&sb, "  %s\n", p.req.Description)
	}
	for _, path := range p.req.Paths {
		fmt.Fprintf(&sb, "  path: %s\n", path)
	}
	switch meta := p.req.Meta.(type) {
	case *permission.BashMeta:
		fmt.Fprintf(&sb, "  command: %s\n", meta.Command)
	case *permission.WebMeta:
		fmt.Fprintf(&sb, "  domain: %s\n", meta.Domain)
	}
	if p.req.IsDestructive {
		sb.WriteString(errorStyle.Render("  this action is destructive\n"))
	}
	sb.WriteString("[y]es  [n]o  [a]llow all for this tool  [t]rust session")
	return sb.String()
}

// answer resolves the prompt for the given keypress, returning false if the
// key doesn't map to an outcome (the prompt stays open).
func (p *permissionPrompt) answer(key string) bool {
	var outcome permission.Outcome
	switch key {
	case "y":
		outcome = permission.OutcomeAllow
	case "n":
		outcome = permission.OutcomeDeny
	case "a":
		outcome = permission.OutcomeAllowAll
	case "t":
		outcome = permission.OutcomeTrustAll
	default:
		return false
	}
	p.resp <- outcome
	return true
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/coreagent/gencore/internal/chatcontroller"
	"github.com/coreagent/gencore/internal/contextstore"
	"github.com/coreagent/gencore/internal/eventbus"
	"github.com/coreagent/gencore/internal/message"
	"github.com/coreagent/gencore/internal/permission"
	"github.com/coreagent/gencore/internal/scheduler"
	"github.com/coreagent/gencore/internal/system"
	"github.com/coreagent/gencore/internal/tool"

	_ "github.com/coreagent/gencore/internal/tool/builtin"
)

// defaultRateCapPerMinute bounds the tokens/minute shared across the parent
// controller and every sub-agent it spawns. A single CLI process has no
// way to learn the provider's real rate limit, so this is a conservative
// floor rather than a measured value.
const defaultRateCapPerMinute = 200000

// controllerOptions configures buildController. Trust bypasses all
// permission prompts (always set by ask, which has no interactive surface to
// prompt on); Cap, when non-empty, layers an extra system-prompt section
// from a named cap bundle (see caps.go).
type controllerOptions struct {
	ProviderName string
	Model        string
	Trust        bool
	Cap          string
}

func buildController(ctx context.Context, opts controllerOptions) (*chatcontroller.Controller, error) {
	p, defaultModel, err := resolveProvider(ctx, opts.ProviderName)
	if err != nil {
		return nil, err
	}

	model := opts.Model
	if model == "" {
		model = defaultModel
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getwd: %w", err)
	}

	store := contextstore.NewStore()
	store.SetProjectRoot(cwd, true)

	var broker *permission.Broker
	if opts.Trust {
		broker = permission.NewTrustedBroker()
	} else {
		broker = permission.NewBroker(denyConfirm)
	}

	registry := tool.NewRegistry()
	for _, name := range tool.DefaultRegistry.Names() {
		t, _ := tool.DefaultRegistry.Get(name)
		registry.Register(t)
	}

	bus := eventbus.New()

	rate := scheduler.NewTokenRateCoordinator(defaultRateCapPerMinute)
	sched := &scheduler.Scheduler{
		Provider:        p,
		Model:           model,
		MaxTokens:       8192,
		Registry:        registry,
		Broker:          broker,
		Bus:             bus,
		RateCoordinator: rate,
		Cwd:             cwd,
	}
	registry.Register(sched.Tool())

	conv := message.NewConversation(p.CountTokens)
	prompt := buildSystemPrompt(p.Name(), model, cwd, opts.Cap)
	if pc := store.ProjectContextString(); pc != "" {
		prompt += "\n\n" + pc
	}
	conv.SetSystem(prompt)

	return &chatcontroller.Controller{
		Provider:     p,
		Model:        model,
		MaxTokens:    8192,
		Conversation: conv,
		Store:        store,
		Tools:        registry,
		Broker:       broker,
		Scheduler:    sched,
		Bus:          bus,
		Cwd:          cwd,
	}, nil
}

// buildSystemPrompt assembles the session's system prompt from the project's
// memory files and, if named, a cap bundle's own prompt section.
func buildSystemPrompt(providerName, model, cwd, capName string) string {
	cfg := system.Config{
		Provider: providerName,
		Model:    model,
		Cwd:      cwd,
		Memory:   system.LoadMemory(cwd),
	}
	if capName != "" {
		if c, err := loadCap(cwd, capName); err == nil && c.SystemPrompt != "" {
			cfg.Extra = append(cfg.Extra, c.SystemPrompt)
		}
	}
	return system.BuildPrompt(cfg)
}

// denyConfirm is the permission callback for untrusted controllers that
// never attach a TUI (the one-shot root invocation and `chat --no-tui`;
// tui.Run installs its own broker): there is nobody to answer a prompt, so
// every gated tool call is refused outright.
func denyConfirm(req permission.Request) permission.Outcome {
	return permission.OutcomeDeny
}

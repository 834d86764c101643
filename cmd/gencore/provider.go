package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/coreagent/gencore/internal/provider"
)

// providerCandidate pairs a factory key ("anthropic:api_key") with the env
// var that must be set for it to be usable and the model it defaults to
// when the caller doesn't name one.
type providerCandidate struct {
	key          string
	envVar       string
	defaultModel string
}

var providerCandidates = []providerCandidate{
	{key: "anthropic:api_key", envVar: "ANTHROPIC_API_KEY", defaultModel: "claude-sonnet-4-20250514"},
	{key: "openai:api_key", envVar: "OPENAI_API_KEY", defaultModel: "gpt-4o"},
	{key: "google:api_key", envVar: "GOOGLE_API_KEY", defaultModel: "gemini-2.0-flash"},
	{key: "moonshot:api_key", envVar: "MOONSHOT_API_KEY", defaultModel: "kimi-k2-0711-preview"},
}

// resolveProvider picks a provider by name (matching the candidate's
// provider prefix, e.g. "anthropic") or, if name is empty, the first
// candidate whose env var is set. It returns the constructed provider and
// the default model to use absent an explicit --model override.
func resolveProvider(ctx context.Context, name string) (provider.LlmProvider, string, error) {
	for _, c := range providerCandidates {
		if name != "" && !strings.HasPrefix(c.key, name+":") {
			continue
		}
		if os.Getenv(c.envVar) == "" {
			continue
		}
		p, err := provider.NewProvider(ctx, c.key)
		if err != nil {
			return nil, "", err
		}
		return p, c.defaultModel, nil
	}

	if name != "" {
		return nil, "", fmt.Errorf("provider %q is not available (missing API key env var)", name)
	}
	return nil, "", fmt.Errorf("no provider connected: set one of %s", envVarList())
}

func envVarList() string {
	out := ""
	for i, c := range providerCandidates {
		if i > 0 {
			out += ", "
		}
		out += c.envVar
	}
	return out
}

package provider

import (
	"context"
	"fmt"

	"github.com/coreagent/gencore/internal/provider/anthropic"
	"github.com/coreagent/gencore/internal/provider/google"
	"github.com/coreagent/gencore/internal/provider/moonshot"
	"github.com/coreagent/gencore/internal/provider/openai"
)

// NewProvider creates an LlmProvider for "<provider>:<auth_method>", e.g.
// "anthropic:api_key".
func NewProvider(ctx context.Context, name string) (LlmProvider, error) {
	switch name {
	case "anthropic:api_key":
		return anthropic.NewAPIKeyClient(ctx)
	case "google:api_key":
		return google.NewAPIKeyClient(ctx)
	case "openai:api_key":
		return openai.NewAPIKeyClient(ctx)
	case "moonshot:api_key":
		return moonshot.NewAPIKeyClient(ctx)
	default:
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
}

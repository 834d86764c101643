// Package provider defines the LlmProvider contract every model backend
// implements, the normalized error taxonomy the agent loop reacts to, and
// the retry-with-backoff wrapper that sits between them.
package provider

import (
	"context"

	"github.com/coreagent/gencore/internal/message"
)

// Provider names a model backend.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"
	ProviderMoonshot  Provider = "moonshot"
)

// AuthMethod names how a provider is authenticated.
type AuthMethod string

const (
	AuthAPIKey  AuthMethod = "api_key"
	AuthVertex  AuthMethod = "vertex"
	AuthBedrock AuthMethod = "bedrock"
)

// ProviderMeta is static metadata about one provider/auth-method pairing.
type ProviderMeta struct {
	Provider    Provider
	AuthMethod  AuthMethod
	EnvVars     []string
	DisplayName string
}

// Key returns a unique registry key for this configuration.
func (m ProviderMeta) Key() string {
	return string(m.Provider) + ":" + string(m.AuthMethod)
}

// ModelInfo describes one model a provider exposes.
type ModelInfo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DisplayName     string `json:"displayName,omitempty"`
	ContextWindow   int    `json:"contextWindow,omitempty"`
	MaxOutputTokens int    `json:"maxOutputTokens,omitempty"`
	SupportsTools   bool   `json:"supportsTools,omitempty"`
}

// ToolDefinition is the provider-agnostic shape of a tool's declaration,
// built from a registered Tool's ToolDefinition (see internal/tool).
type ToolDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema interface{} `json:"input_schema"`
}

// CompletionRequest is everything an adapter needs to start one completion.
type CompletionRequest struct {
	Model        string
	Messages     []message.Message
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
	Tools        []ToolDefinition
}

// LlmProvider unifies streaming completion across concrete provider
// adapters (anthropic, openai, google, moonshot). Stream is the primary
// entrypoint; Complete is a convenience wrapper that drains a stream into
// one CompletionResponse (see Complete below).
type LlmProvider interface {
	Name() string
	AvailableModels(ctx context.Context) ([]ModelInfo, error)
	SupportsModel(id string) bool
	GetModelInfo(id string) (ModelInfo, bool)
	CountTokens(text string) int
	Complete(ctx context.Context, req CompletionRequest) (message.CompletionResponse, error)
	Stream(ctx context.Context, req CompletionRequest) <-chan message.StreamChunk
}

// ProviderFactory constructs an LlmProvider, typically by reading
// credentials from the environment.
type ProviderFactory func(ctx context.Context) (LlmProvider, error)

// Complete drains a provider's Stream into a single CompletionResponse.
// Every concrete adapter can implement Complete in terms of this helper
// rather than duplicating the assembly logic.
func Complete(ctx context.Context, p LlmProvider, req CompletionRequest) (message.CompletionResponse, error) {
	var response message.CompletionResponse

	for chunk := range p.Stream(ctx, req) {
		switch chunk.Type {
		case message.ChunkTypeText:
			response.Content += chunk.Text
		case message.ChunkTypeThinking:
			response.Thinking += chunk.Text
		case message.ChunkTypeToolStart, message.ChunkTypeToolInput:
			// Tool calls are assembled and reported on the Done chunk.
		case message.ChunkTypeDone:
			if chunk.Response != nil {
				return *chunk.Response, nil
			}
			return response, nil
		case message.ChunkTypeError:
			return response, chunk.Error
		}
	}

	return response, nil
}

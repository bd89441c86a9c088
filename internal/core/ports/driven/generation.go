package driven

import "context"

// GenerationService produces text completions for question answering.
// This is an optional service - when nil, answering is disabled while
// search remains available.
//
// Implementations may include:
//   - OpenAI (gpt-4o-mini, gpt-4o)
//   - Anthropic (Claude)
//   - Ollama (local models)
//
// Multiple concrete providers are swappable behind this one contract.
type GenerationService interface {
	// Generate produces a completion for the prompt. Fails wrapping
	// domain.ErrGenerationFailed on provider outage, auth failure or
	// rate limiting.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (*GenerationResult, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// SystemPrompt is the instruction prepended to the conversation.
	SystemPrompt string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

// GenerationResult is the outcome of a successful generation call.
type GenerationResult struct {
	// Text is the generated completion.
	Text string

	// TokensUsed is the total token count reported by the provider,
	// or an estimate when the provider reports none.
	TokensUsed int

	// LatencyMs is the round-trip time in milliseconds.
	LatencyMs int64

	// Model identifies the model that produced the text.
	Model string
}

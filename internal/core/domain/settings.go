package domain

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderHashing is the in-process feature-hashing embedder.
	AIProviderHashing AIProvider = "hashing"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderHashing, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs without network access
// to a hosted service.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderHashing || p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderHashing:
		return "Hashing (in-process)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding provider.
	Provider AIProvider `toml:"provider"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// BaseURL is the API endpoint (for Ollama and compatible APIs).
	BaseURL string `toml:"base_url"`

	// APIKey is the API key (for OpenAI).
	APIKey string `toml:"api_key"`

	// Dimensions overrides the provider's default vector size.
	Dimensions int `toml:"dimensions"`
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// GenerationSettings holds text generation provider configuration.
type GenerationSettings struct {
	// Provider is the generation provider.
	Provider AIProvider `toml:"provider"`

	// Model is the generation model name.
	Model string `toml:"model"`

	// BaseURL is the API endpoint (for Ollama and compatible APIs).
	BaseURL string `toml:"base_url"`

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string `toml:"api_key"`

	// Temperature controls sampling randomness.
	Temperature float64 `toml:"temperature"`

	// MaxTokens bounds the answer length.
	MaxTokens int `toml:"max_tokens"`
}

// IsConfigured returns true if the generation provider is set up.
func (g GenerationSettings) IsConfigured() bool {
	if !g.Provider.IsValid() || g.Provider == AIProviderHashing {
		return false
	}
	if g.Provider.RequiresAPIKey() && g.APIKey == "" {
		return false
	}
	return true
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// Algorithm is the default ranking algorithm.
	Algorithm SearchAlgorithm `toml:"algorithm"`

	// TopK is the default result bound.
	TopK int `toml:"top_k"`

	// SimilarityThreshold is the default score cut-off.
	SimilarityThreshold float64 `toml:"similarity_threshold"`

	// KeywordWeight and SemanticWeight are the hybrid combination
	// weights. Defaults are 0.5/0.5; they carry no calibration claim.
	KeywordWeight  float64 `toml:"keyword_weight"`
	SemanticWeight float64 `toml:"semantic_weight"`
}

// Options converts the settings into SearchOptions with defaults applied.
func (s SearchSettings) Options() SearchOptions {
	return SearchOptions{
		Algorithm:           s.Algorithm,
		TopK:                s.TopK,
		SimilarityThreshold: s.SimilarityThreshold,
		KeywordWeight:       s.KeywordWeight,
		SemanticWeight:      s.SemanticWeight,
	}.Normalised()
}

// Default chunking values.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// ChunkingSettings holds chunker configuration.
type ChunkingSettings struct {
	// Size is the maximum chunk length in characters.
	Size int `toml:"size"`

	// Overlap is the number of characters shared with the previous
	// chunk. Must stay strictly below Size.
	Overlap int `toml:"overlap"`
}

// StorageSettings holds local store configuration.
type StorageSettings struct {
	// CapacityBytes is the storage ceiling. Zero means unlimited.
	CapacityBytes int64 `toml:"capacity_bytes"`
}

// BudgetSettings holds budget configuration.
type BudgetSettings struct {
	// MonthlyLimit is the budget ceiling in currency units.
	MonthlyLimit float64 `toml:"monthly_limit"`
}

// Default unit prices, in currency units.
const (
	DefaultGenerationTokenPrice = 0.000002
	DefaultEmbeddingTokenPrice  = 0.0000001
	DefaultStorageBytePrice     = 0.0
)

// PricingSettings holds the unit price table. Changing it never
// rewrites historical UsageRecords.
type PricingSettings struct {
	// GenerationPerToken is the price per generation token.
	GenerationPerToken float64 `toml:"generation_per_token"`

	// EmbeddingPerToken is the price per embedding token.
	EmbeddingPerToken float64 `toml:"embedding_per_token"`

	// StoragePerByte is the price per stored byte.
	StoragePerByte float64 `toml:"storage_per_byte"`
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings `toml:"embedding"`

	// Generation holds generation provider settings.
	Generation GenerationSettings `toml:"generation"`

	// Search holds search behaviour settings.
	Search SearchSettings `toml:"search"`

	// Chunking holds chunker settings.
	Chunking ChunkingSettings `toml:"chunking"`

	// Storage holds local store settings.
	Storage StorageSettings `toml:"storage"`

	// Budget holds budget settings.
	Budget BudgetSettings `toml:"budget"`

	// Pricing holds the unit price table.
	Pricing PricingSettings `toml:"pricing"`

	// SystemPrompt overrides the built-in answer instruction.
	SystemPrompt string `toml:"system_prompt"`
}

// DefaultAppSettings returns settings with sensible defaults.
// The in-process hashing embedder is enabled out of the box so semantic
// search works without any external service; generation is left
// unconfigured until the user picks a provider.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderHashing,
		},
		Search: SearchSettings{
			Algorithm:      SearchHybrid,
			TopK:           DefaultTopK,
			KeywordWeight:  DefaultKeywordWeight,
			SemanticWeight: DefaultSemanticWeight,
		},
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Pricing: PricingSettings{
			GenerationPerToken: DefaultGenerationTokenPrice,
			EmbeddingPerToken:  DefaultEmbeddingTokenPrice,
			StoragePerByte:     DefaultStorageBytePrice,
		},
	}
}

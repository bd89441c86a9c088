package driven

import "context"

// EmbeddingService turns text into a fixed-length numeric vector.
// This is an optional service - when nil, semantic search is disabled.
//
// Implementations may include:
//   - The in-process feature-hashing embedder (no network)
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//
// Dimensionality is a property of the provider and must be consistent
// within one project collection; mixing providers in the same collection
// is invalid.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Fails wrapping domain.ErrEmbeddingFailed when the provider is
	// unreachable or the input exceeds the provider's maximum length.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. Semantically
	// equivalent to calling Embed per item, but may be implemented more
	// efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 256, 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is usable with a lightweight check.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

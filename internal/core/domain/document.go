package domain

import "time"

// Document represents an ingested document within a project.
// It is the canonical representation of an upload after ingestion.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// ProjectID links to the project that owns this document.
	// Documents are owned exclusively by one project; deleting the
	// document cascades to its chunks and embeddings.
	ProjectID string

	// Name is the human-readable display name (usually the file name).
	Name string

	// Content is the full raw text content.
	Content string

	// ContentType tags the original format (e.g. "text/plain", "text/markdown").
	ContentType string

	// SizeBytes is the stored size of the raw content.
	SizeBytes int64

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Chunk represents a retrievable unit within a document.
// Documents are split into overlapping chunks for granular search.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Index is the ordinal position within the document. Chunks are
	// always retrievable in original sequence ordered by Index.
	Index int

	// Content is the text span of this chunk.
	Content string

	// StartOffset is the character offset of the span start in the
	// document content.
	StartOffset int

	// EndOffset is the character offset one past the span end.
	EndOffset int

	// Keywords is the lower-cased token set of Content, precomputed at
	// ingestion time for keyword scoring.
	Keywords []string

	// Embedding is the vector representation for semantic search.
	// Empty when the project was ingested without an embedding provider.
	Embedding []float32

	// EmbeddingModel names the model that produced Embedding. Chunks
	// embedded with a different model or dimensionality than a query
	// embedding are excluded from semantic scoring.
	EmbeddingModel string

	// CreatedAt is when the chunk was ingested. Used for recency
	// tie-breaking in search.
	CreatedAt time.Time
}

// HasEmbedding reports whether the chunk carries a vector.
func (c Chunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// StoreStats reports aggregate storage usage for a project.
type StoreStats struct {
	// DocumentCount is the number of stored documents.
	DocumentCount int

	// ChunkCount is the number of stored chunks.
	ChunkCount int

	// EmbeddingCount is the number of chunks with an embedding vector.
	EmbeddingCount int

	// BytesUsed is the total bytes consumed by documents, chunks and
	// embedding vectors.
	BytesUsed int64

	// CapacityBytes is the configured storage ceiling. Zero means
	// unlimited.
	CapacityBytes int64
}

// Remaining returns the bytes left before the ceiling is reached.
// Returns -1 when the store is unbounded.
func (s StoreStats) Remaining() int64 {
	if s.CapacityBytes <= 0 {
		return -1
	}
	remaining := s.CapacityBytes - s.BytesUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrQuotaExceeded indicates the store is at capacity. Ingestion of
	// the offending document is rejected; prior documents remain intact.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrEmbeddingFailed indicates an embedding provider failure:
	// the provider is unreachable or the input exceeds its maximum
	// input length.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrGenerationFailed indicates a text generation provider failure:
	// outage, auth failure or rate limiting.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrEmbeddingUnavailable indicates no embedding provider is
	// configured. Semantic and hybrid search are disabled without one.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrGenerationUnavailable indicates no generation provider is
	// configured. Question answering is disabled without one.
	ErrGenerationUnavailable = errors.New("generation provider unavailable")

	// ErrNoDocuments indicates the project has no ingested documents.
	// Queries short-circuit to guidance rather than failing.
	ErrNoDocuments = errors.New("no documents ingested")

	// ErrIngestCancelled indicates an ingestion was cancelled before
	// completion. Nothing was persisted; the document is safe to retry.
	ErrIngestCancelled = errors.New("ingestion cancelled")
)

// IngestionError reports a failure while ingesting a specific document.
// The document's partial chunks are rolled back before it is returned.
type IngestionError struct {
	// DocumentName is the display name of the failed document.
	DocumentName string

	// Stage is the pipeline stage that failed ("chunk", "embed", "store").
	Stage string

	// Err is the underlying cause.
	Err error
}

// Error returns the formatted error message.
func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingesting %q (%s): %v", e.DocumentName, e.Stage, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *IngestionError) Unwrap() error {
	return e.Err
}

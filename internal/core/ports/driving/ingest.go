package driving

import (
	"context"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driven"
)

// IngestResult is the outcome of one ingestion, delivered on completion.
type IngestResult struct {
	// Document is the stored document on success, nil on failure.
	Document *domain.Document

	// ChunkCount is the number of chunks created.
	ChunkCount int

	// Err is the failure cause, nil on success. A failed ingestion
	// persists nothing and is safe to retry from scratch.
	Err error
}

// IngestService runs the ingestion pipeline: chunk, embed, store.
// Ingestions within one project are serialized; separate projects may
// ingest concurrently.
type IngestService interface {
	// Ingest synchronously ingests one document. On any failure
	// (chunking, embedding, quota) nothing is persisted and a typed
	// error is returned identifying the document and cause.
	Ingest(ctx context.Context, doc driven.IncomingDocument) (*domain.Document, error)

	// IngestAsync starts an ingestion and returns a channel that
	// delivers exactly one IngestResult when the pipeline completes or
	// the context is cancelled. The channel is closed afterwards.
	IngestAsync(ctx context.Context, doc driven.IncomingDocument) <-chan IngestResult

	// IngestFrom drains a DocumentSource, ingesting every document it
	// supplies until the source closes or the context is cancelled.
	// Per-document failures are reported through the handler and do not
	// stop the drain.
	IngestFrom(ctx context.Context, source driven.DocumentSource, handle func(IngestResult)) error
}

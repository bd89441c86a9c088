package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/keepsake-labs/recall-cli/internal/chunker"
	"github.com/keepsake-labs/recall-cli/internal/core/domain"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driven"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driving"
	"github.com/keepsake-labs/recall-cli/internal/logger"
)

// Ensure IngestPipeline implements the interface.
var _ driving.IngestService = (*IngestPipeline)(nil)

// embedBatchSize is the number of chunk texts sent per embedding call.
// Cancellation is checked between batches.
const embedBatchSize = 32

// IngestPipeline turns incoming documents into stored, searchable chunks:
// chunk, embed, persist, meter.
//
// Ingestions within one project are serialized so interleaved writes can
// never mix chunks from different vector spaces; separate projects
// proceed concurrently with no shared state.
type IngestPipeline struct {
	docStore driven.DocumentStore
	embedder driven.EmbeddingService
	chunker  *chunker.Chunker
	budget   driving.BudgetService

	mu       sync.Mutex
	projects map[string]*sync.Mutex
}

// NewIngestPipeline creates an ingestion pipeline.
// The embedder is optional (can be nil); without it, chunks are stored
// without vectors and only keyword search applies. The budget service is
// optional; without it, usage goes unmetered.
func NewIngestPipeline(
	docStore driven.DocumentStore,
	embedder driven.EmbeddingService,
	ch *chunker.Chunker,
	budget driving.BudgetService,
) *IngestPipeline {
	return &IngestPipeline{
		docStore: docStore,
		embedder: embedder,
		chunker:  ch,
		budget:   budget,
		projects: make(map[string]*sync.Mutex),
	}
}

// Ingest synchronously ingests one document. On any failure nothing is
// persisted: the whole document, its chunks and embeddings are written
// in one atomic store call, so a partial ingestion can never look like
// valid data.
func (p *IngestPipeline) Ingest(ctx context.Context, in driven.IncomingDocument) (*domain.Document, error) {
	if err := validateIncoming(in); err != nil {
		return nil, err
	}

	lock := p.projectLock(in.ProjectID)
	lock.Lock()
	defer lock.Unlock()

	logger.Section("Ingestion")
	logger.Info("Ingesting %q into project %s", in.Name, in.ProjectID)

	spans := p.chunker.Chunk(in.Content)
	logger.Debug("Chunked into %d spans", len(spans))

	vectors, err := p.embedSpans(ctx, in, spans)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          uuid.New().String(),
		ProjectID:   in.ProjectID,
		Name:        in.Name,
		Content:     in.Content,
		ContentType: in.ContentType,
		SizeBytes:   int64(len(in.Content)),
		CreatedAt:   now,
	}

	chunks := make([]domain.Chunk, len(spans))
	for i, span := range spans {
		chunks[i] = domain.Chunk{
			ID:          uuid.New().String(),
			DocumentID:  doc.ID,
			Index:       span.Index,
			Content:     span.Text,
			StartOffset: span.Start,
			EndOffset:   span.End,
			Keywords:    Tokenize(span.Text),
			CreatedAt:   now,
		}
		if vectors != nil {
			chunks[i].Embedding = vectors[i]
			chunks[i].EmbeddingModel = p.embedder.ModelName()
		}
	}

	if err := p.docStore.SaveDocument(ctx, doc, chunks); err != nil {
		return nil, &domain.IngestionError{
			DocumentName: in.Name,
			Stage:        "store",
			Err:          err,
		}
	}

	p.meterStorage(ctx, doc)

	logger.Info("Ingested %q: %d chunks, %d bytes", in.Name, len(chunks), doc.SizeBytes)
	return doc, nil
}

// IngestAsync starts an ingestion and signals completion on the returned
// channel instead of requiring callers to poll for status.
func (p *IngestPipeline) IngestAsync(ctx context.Context, in driven.IncomingDocument) <-chan driving.IngestResult {
	done := make(chan driving.IngestResult, 1)
	go func() {
		defer close(done)
		doc, err := p.Ingest(ctx, in)
		result := driving.IngestResult{Document: doc, Err: err}
		if doc != nil {
			chunks, chunksErr := p.docStore.GetChunks(ctx, doc.ID)
			if chunksErr == nil {
				result.ChunkCount = len(chunks)
			}
		}
		done <- result
	}()
	return done
}

// IngestFrom drains a DocumentSource until it closes or the context is
// cancelled. Per-document failures are passed to handle and do not stop
// the drain.
func (p *IngestPipeline) IngestFrom(
	ctx context.Context, source driven.DocumentSource, handle func(driving.IngestResult),
) error {
	docs, errs := source.Documents(ctx)

	for docs != nil || errs != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case in, ok := <-docs:
			if !ok {
				docs = nil
				continue
			}
			doc, err := p.Ingest(ctx, in)
			if handle != nil {
				handle(driving.IngestResult{Document: doc, Err: err})
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil && handle != nil {
				handle(driving.IngestResult{Err: err})
			}
		}
	}

	return nil
}

// embedSpans generates vectors for all spans in batches. Returns nil
// vectors when no embedder is configured. A cancelled or failed batch
// aborts the whole document before anything touches the store.
func (p *IngestPipeline) embedSpans(
	ctx context.Context, in driven.IncomingDocument, spans []chunker.Span,
) ([][]float32, error) {
	if p.embedder == nil || len(spans) == 0 {
		return nil, nil
	}

	texts := make([]string, len(spans))
	for i, span := range spans {
		texts[i] = span.Text
	}

	vectors := make([][]float32, 0, len(spans))
	for start := 0; start < len(texts); start += embedBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, &domain.IngestionError{
				DocumentName: in.Name,
				Stage:        "embed",
				Err:          fmt.Errorf("%w: %w", domain.ErrIngestCancelled, err),
			}
		}

		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := p.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, &domain.IngestionError{
				DocumentName: in.Name,
				Stage:        "embed",
				Err:          err,
			}
		}
		vectors = append(vectors, batch...)
	}

	p.meterEmbedding(ctx, in.ProjectID, texts)

	return vectors, nil
}

// meterEmbedding records embedding token usage. The provider call already
// happened and was billed, so this runs even if the later store write is
// rejected. Metering failures are logged, not fatal.
func (p *IngestPipeline) meterEmbedding(ctx context.Context, projectID string, texts []string) {
	if p.budget == nil {
		return
	}
	var tokens int64
	for _, text := range texts {
		tokens += EstimateTokens(text)
	}
	if _, err := p.budget.Record(ctx, projectID, domain.OpEmbedding, tokens); err != nil {
		logger.Warn("Failed to record embedding usage: %v", err)
	}
}

// meterStorage records stored bytes after a successful save.
func (p *IngestPipeline) meterStorage(ctx context.Context, doc *domain.Document) {
	if p.budget == nil {
		return
	}
	if _, err := p.budget.Record(ctx, doc.ProjectID, domain.OpStorage, doc.SizeBytes); err != nil {
		logger.Warn("Failed to record storage usage: %v", err)
	}
}

// projectLock returns the serialization mutex for a project, creating it
// on first use.
func (p *IngestPipeline) projectLock(projectID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.projects[projectID]
	if !ok {
		lock = &sync.Mutex{}
		p.projects[projectID] = lock
	}
	return lock
}

// validateIncoming rejects documents the pipeline cannot make searchable.
func validateIncoming(in driven.IncomingDocument) error {
	if strings.TrimSpace(in.ProjectID) == "" {
		return fmt.Errorf("%w: missing project ID", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: missing document name", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: document %q has no content", domain.ErrInvalidInput, in.Name)
	}
	return nil
}

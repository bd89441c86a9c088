package driven

import (
	"context"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

// DocumentStore persists documents and their chunks.
//
// Writes are atomic per document: a document and its chunks are stored
// together or not at all, so a failed or quota-rejected ingestion never
// leaves half-written chunks behind. The store never evicts silently;
// eviction happens only through an explicit EvictOldest call.
type DocumentStore interface {
	// SaveDocument atomically stores a document together with its chunks.
	// Returns domain.ErrQuotaExceeded when the write would push the
	// project past the configured capacity ceiling; in that case nothing
	// is written and prior documents remain intact.
	SaveDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents for a project in insertion order.
	ListDocuments(ctx context.Context, projectID string) ([]domain.Document, error)

	// GetChunks retrieves a document's chunks ordered by Index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// ListChunks returns all chunks for a project, ordered by document
	// insertion then by Index.
	ListChunks(ctx context.Context, projectID string) ([]domain.Chunk, error)

	// DeleteDocument removes a document, cascading to its chunks and
	// embeddings synchronously before returning.
	DeleteDocument(ctx context.Context, id string) error

	// Stats reports aggregate usage for a project.
	Stats(ctx context.Context, projectID string) (*domain.StoreStats, error)

	// EvictOldest removes the oldest document of a project (with its
	// chunks) and returns it. Returns domain.ErrNotFound when the
	// project holds no documents.
	EvictOldest(ctx context.Context, projectID string) (*domain.Document, error)
}

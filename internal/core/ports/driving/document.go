package driving

import (
	"context"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

// DocumentService manages ingested documents.
type DocumentService interface {
	// List returns a project's documents in insertion order.
	List(ctx context.Context, projectID string) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Delete removes a document, cascading to chunks and embeddings.
	Delete(ctx context.Context, documentID string) error

	// Stats reports aggregate storage usage for a project.
	Stats(ctx context.Context, projectID string) (*domain.StoreStats, error)

	// Evict removes the oldest document to free capacity. Eviction only
	// ever happens through this explicit call, never silently.
	Evict(ctx context.Context, projectID string) (*domain.Document, error)
}

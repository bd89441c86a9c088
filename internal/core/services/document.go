package services

import (
	"context"
	"fmt"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driven"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driving"
	"github.com/keepsake-labs/recall-cli/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages ingested documents and store capacity.
type DocumentService struct {
	docStore driven.DocumentStore
}

// NewDocumentService creates a document service.
func NewDocumentService(docStore driven.DocumentStore) *DocumentService {
	return &DocumentService{docStore: docStore}
}

// List returns a project's documents in insertion order.
func (s *DocumentService) List(ctx context.Context, projectID string) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx, projectID)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// Delete removes a document; its chunks and embeddings go with it
// synchronously.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	logger.Info("Deleted document %s", documentID)
	return nil
}

// Stats reports aggregate storage usage for a project.
func (s *DocumentService) Stats(ctx context.Context, projectID string) (*domain.StoreStats, error) {
	return s.docStore.Stats(ctx, projectID)
}

// Evict removes the oldest document to free capacity. The store never
// evicts on its own; this explicit call is the only path.
func (s *DocumentService) Evict(ctx context.Context, projectID string) (*domain.Document, error) {
	doc, err := s.docStore.EvictOldest(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("evict oldest: %w", err)
	}
	logger.Info("Evicted document %q (%d bytes)", doc.Name, doc.SizeBytes)
	return doc, nil
}

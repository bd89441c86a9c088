// Package memory provides an in-memory implementation of the storage
// ports. Used for tests and ephemeral sessions.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driven"
)

// Ensure Store implements the storage interfaces.
var (
	_ driven.DocumentStore = (*Store)(nil)
	_ driven.ChatStore     = (*Store)(nil)
	_ driven.UsageStore    = (*Store)(nil)
)

// Store is an in-memory implementation of DocumentStore, ChatStore and
// UsageStore with the same quota semantics as the SQLite store.
type Store struct {
	mu       sync.RWMutex
	capacity int64

	docs     []domain.Document
	chunks   map[string][]domain.Chunk // documentID -> chunks
	messages map[string][]domain.ChatMessage
	usage    map[string][]domain.UsageRecord
}

// NewStore creates an in-memory store with the given capacity ceiling.
// A non-positive capacity means unlimited.
func NewStore(capacityBytes int64) *Store {
	return &Store{
		capacity: capacityBytes,
		chunks:   make(map[string][]domain.Chunk),
		messages: make(map[string][]domain.ChatMessage),
		usage:    make(map[string][]domain.UsageRecord),
	}
}

// SaveDocument atomically stores a document with its chunks, enforcing
// the capacity ceiling. Nothing is written on rejection.
func (s *Store) SaveDocument(_ context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	incoming := storedBytes(doc, chunks)
	if s.capacity > 0 && s.bytesUsedLocked(doc.ProjectID)+incoming > s.capacity {
		return domain.ErrQuotaExceeded
	}

	s.docs = append(s.docs, *doc)

	ordered := make([]domain.Chunk, len(chunks))
	copy(ordered, chunks)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })
	s.chunks[doc.ID] = ordered

	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.docs {
		if s.docs[i].ID == id {
			doc := s.docs[i]
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListDocuments returns a project's documents in insertion order.
func (s *Store) ListDocuments(_ context.Context, projectID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []domain.Document
	for _, doc := range s.docs {
		if doc.ProjectID == projectID {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// GetChunks retrieves a document's chunks ordered by index.
func (s *Store) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks := s.chunks[documentID]
	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)
	return out, nil
}

// ListChunks returns all chunks for a project, by document insertion
// order then chunk index.
func (s *Store) ListChunks(_ context.Context, projectID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Chunk
	for _, doc := range s.docs {
		if doc.ProjectID == projectID {
			out = append(out, s.chunks[doc.ID]...)
		}
	}
	return out, nil
}

// DeleteDocument removes a document and cascades to its chunks.
func (s *Store) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if s.docs[i].ID == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			delete(s.chunks, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

// Stats reports aggregate usage for a project.
func (s *Store) Stats(_ context.Context, projectID string) (*domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.StoreStats{CapacityBytes: s.capacity}
	for _, doc := range s.docs {
		if doc.ProjectID != projectID {
			continue
		}
		stats.DocumentCount++
		for _, chunk := range s.chunks[doc.ID] {
			stats.ChunkCount++
			if chunk.HasEmbedding() {
				stats.EmbeddingCount++
			}
		}
	}
	stats.BytesUsed = s.bytesUsedLocked(projectID)
	return stats, nil
}

// EvictOldest removes the oldest document of a project and returns it.
func (s *Store) EvictOldest(_ context.Context, projectID string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oldest := -1
	for i := range s.docs {
		if s.docs[i].ProjectID != projectID {
			continue
		}
		if oldest < 0 || s.docs[i].CreatedAt.Before(s.docs[oldest].CreatedAt) {
			oldest = i
		}
	}
	if oldest < 0 {
		return nil, domain.ErrNotFound
	}

	doc := s.docs[oldest]
	s.docs = append(s.docs[:oldest], s.docs[oldest+1:]...)
	delete(s.chunks, doc.ID)
	return &doc, nil
}

// AppendMessage stores a new chat message.
func (s *Store) AppendMessage(_ context.Context, msg *domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.ProjectID] = append(s.messages[msg.ProjectID], *msg)
	return nil
}

// ListMessages returns a project's messages in insertion order.
func (s *Store) ListMessages(_ context.Context, projectID string) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[projectID]
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

// ClearMessages removes all messages for a project.
func (s *Store) ClearMessages(_ context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, projectID)
	return nil
}

// AppendUsage stores a new usage record.
func (s *Store) AppendUsage(_ context.Context, rec *domain.UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage[rec.ProjectID] = append(s.usage[rec.ProjectID], *rec)
	return nil
}

// ListUsage returns records created in [from, to) in insertion order.
func (s *Store) ListUsage(
	_ context.Context, projectID string, from, to time.Time,
) ([]domain.UsageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.UsageRecord
	for _, rec := range s.usage[projectID] {
		if !rec.CreatedAt.Before(from) && rec.CreatedAt.Before(to) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// SumCost returns the total cost of records created in [from, to).
func (s *Store) SumCost(ctx context.Context, projectID string, from, to time.Time) (float64, error) {
	records, err := s.ListUsage(ctx, projectID, from, to)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, rec := range records {
		total += rec.Cost
	}
	return total, nil
}

// ResetUsage removes all records for a project.
func (s *Store) ResetUsage(_ context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.usage, projectID)
	return nil
}

// bytesUsedLocked sums stored bytes for a project. Callers hold the lock.
func (s *Store) bytesUsedLocked(projectID string) int64 {
	var total int64
	for _, doc := range s.docs {
		if doc.ProjectID != projectID {
			continue
		}
		chunks := s.chunks[doc.ID]
		d := doc
		total += storedBytes(&d, chunks)
	}
	return total
}

// storedBytes computes the stored footprint of a document: raw content
// plus chunk text plus four bytes per embedding dimension. The SQLite
// store accounts identically.
func storedBytes(doc *domain.Document, chunks []domain.Chunk) int64 {
	total := int64(len(doc.Content))
	for _, chunk := range chunks {
		total += int64(len(chunk.Content)) + int64(4*len(chunk.Embedding))
	}
	return total
}

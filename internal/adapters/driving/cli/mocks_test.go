package cli

import (
	"context"
	"time"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driven"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driving"
)

// setupTestServices wires mock services into the package-level vars and
// returns a cleanup func restoring the previous ones.
func setupTestServices() func() {
	oldIngest := ingestService
	oldSearch := searchService
	oldQuery := queryService
	oldBudget := budgetService
	oldDocument := documentService

	ingestService = &mockIngestService{
		doc: &domain.Document{ID: "doc-1", Name: "notes.md"},
	}
	searchService = &mockSearchService{
		results: []domain.SearchResult{
			{
				Chunk:        domain.Chunk{Index: 0, Content: "chunk content"},
				DocumentName: "notes.md",
				Score:        0.9,
				Snippet:      "chunk content",
			},
		},
	}
	queryService = &mockQueryService{
		reply: &domain.ChatMessage{Role: domain.RoleAssistant, Content: "mock answer"},
	}
	budgetService = &mockBudgetService{
		status: &domain.BudgetStatus{WithinBudget: true, Spend: 1.5, Limit: 10, Utilization: 15, Projected: 4.5},
	}
	documentService = &mockDocumentService{
		documents: []domain.Document{
			{ID: "doc-1", Name: "notes.md", SizeBytes: 42, CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		},
		document: &domain.Document{ID: "doc-1", Name: "notes.md"},
		stats:    &domain.StoreStats{DocumentCount: 1, ChunkCount: 3, EmbeddingCount: 3, BytesUsed: 42},
	}

	return func() {
		ingestService = oldIngest
		searchService = oldSearch
		queryService = oldQuery
		budgetService = oldBudget
		documentService = oldDocument
	}
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	doc          *domain.Document
	err          error
	lastIncoming driven.IncomingDocument
}

func (m *mockIngestService) Ingest(_ context.Context, incoming driven.IncomingDocument) (*domain.Document, error) {
	m.lastIncoming = incoming
	return m.doc, m.err
}

func (m *mockIngestService) IngestAsync(_ context.Context, _ driven.IncomingDocument) <-chan driving.IngestResult {
	ch := make(chan driving.IngestResult, 1)
	ch <- driving.IngestResult{Document: m.doc, Err: m.err}
	close(ch)
	return ch
}

func (m *mockIngestService) IngestFrom(
	ctx context.Context,
	source driven.DocumentSource,
	handle func(driving.IngestResult),
) error {
	docs, _ := source.Documents(ctx)
	for range docs {
		handle(driving.IngestResult{Document: m.doc, ChunkCount: 1, Err: m.err})
	}
	return nil
}

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results  []domain.SearchResult
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	_, _ string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	reply   *domain.ChatMessage
	history []domain.ChatMessage
	cleared bool
	err     error
}

func (m *mockQueryService) Ask(_ context.Context, _, _ string) (*domain.ChatMessage, error) {
	return m.reply, m.err
}

func (m *mockQueryService) History(_ context.Context, _ string) ([]domain.ChatMessage, error) {
	return m.history, m.err
}

func (m *mockQueryService) ClearHistory(_ context.Context, _ string) error {
	m.cleared = true
	return m.err
}

// mockBudgetService is a mock implementation of driving.BudgetService.
type mockBudgetService struct {
	status    *domain.BudgetStatus
	lastLimit float64
	err       error
}

func (m *mockBudgetService) Record(
	_ context.Context,
	_ string,
	_ domain.OperationKind,
	_ int64,
) (*domain.UsageRecord, error) {
	return nil, m.err
}

func (m *mockBudgetService) Status(_ context.Context, _ string) (*domain.BudgetStatus, error) {
	return m.status, m.err
}

func (m *mockBudgetService) SetLimit(_ context.Context, limit float64) error {
	m.lastLimit = limit
	return m.err
}

func (m *mockBudgetService) Reset(_ context.Context, _ string) error {
	return m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	stats     *domain.StoreStats
	deletedID string
	err       error
}

func (m *mockDocumentService) List(_ context.Context, _ string) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, documentID string) error {
	m.deletedID = documentID
	return m.err
}

func (m *mockDocumentService) Stats(_ context.Context, _ string) (*domain.StoreStats, error) {
	return m.stats, m.err
}

func (m *mockDocumentService) Evict(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

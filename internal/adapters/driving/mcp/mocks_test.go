package mcp

import (
	"context"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error

	lastProjectID string
	lastQuery     string
	lastOpts      domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	projectID, query string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastProjectID = projectID
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	reply   *domain.ChatMessage
	history []domain.ChatMessage
	err     error
}

func (m *mockQueryService) Ask(_ context.Context, _, _ string) (*domain.ChatMessage, error) {
	return m.reply, m.err
}

func (m *mockQueryService) History(_ context.Context, _ string) ([]domain.ChatMessage, error) {
	return m.history, m.err
}

func (m *mockQueryService) ClearHistory(_ context.Context, _ string) error {
	return m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	stats     *domain.StoreStats
	err       error
}

func (m *mockDocumentService) List(_ context.Context, _ string) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentService) Stats(_ context.Context, _ string) (*domain.StoreStats, error) {
	return m.stats, m.err
}

func (m *mockDocumentService) Evict(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

// mockBudgetService is a mock implementation of driving.BudgetService.
type mockBudgetService struct {
	record *domain.UsageRecord
	status *domain.BudgetStatus
	err    error
}

func (m *mockBudgetService) Record(
	_ context.Context,
	_ string,
	_ domain.OperationKind,
	_ int64,
) (*domain.UsageRecord, error) {
	return m.record, m.err
}

func (m *mockBudgetService) Status(_ context.Context, _ string) (*domain.BudgetStatus, error) {
	return m.status, m.err
}

func (m *mockBudgetService) SetLimit(_ context.Context, _ float64) error {
	return m.err
}

func (m *mockBudgetService) Reset(_ context.Context, _ string) error {
	return m.err
}

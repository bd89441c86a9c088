package tui

import (
	"context"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	reply   *domain.ChatMessage
	history []domain.ChatMessage
	err     error

	askedQuestions []string
}

func (m *mockQueryService) Ask(_ context.Context, _, question string) (*domain.ChatMessage, error) {
	m.askedQuestions = append(m.askedQuestions, question)
	return m.reply, m.err
}

func (m *mockQueryService) History(_ context.Context, _ string) ([]domain.ChatMessage, error) {
	return m.history, m.err
}

func (m *mockQueryService) ClearHistory(_ context.Context, _ string) error {
	return m.err
}

// mockBudgetService is a mock implementation of driving.BudgetService.
type mockBudgetService struct {
	status *domain.BudgetStatus
	err    error
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

func (m *mockBudgetService) SetLimit(_ context.Context, _ float64) error {
	return m.err
}

func (m *mockBudgetService) Reset(_ context.Context, _ string) error {
	return m.err
}

package driving

import (
	"context"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

// BudgetService meters billable operations against a monthly budget.
type BudgetService interface {
	// Record meters one billable operation and returns the created
	// usage record with its computed cost.
	Record(ctx context.Context, projectID string, kind domain.OperationKind, quantity int64) (*domain.UsageRecord, error)

	// Status evaluates the current billing period: spend, projection,
	// utilization, and any threshold alerts first observed by this
	// evaluation. Each threshold alerts at most once per period.
	Status(ctx context.Context, projectID string) (*domain.BudgetStatus, error)

	// SetLimit updates the monthly limit. Past usage records are not
	// altered.
	SetLimit(ctx context.Context, limit float64) error

	// Reset truncates the project's usage records and alert latches.
	Reset(ctx context.Context, projectID string) error
}

package driven

import (
	"context"
	"time"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

// UsageStore persists usage records per project.
// Records are append-only; only ResetUsage truncates them.
type UsageStore interface {
	// AppendUsage stores a new usage record.
	AppendUsage(ctx context.Context, rec *domain.UsageRecord) error

	// ListUsage returns a project's records created in [from, to),
	// in insertion order.
	ListUsage(ctx context.Context, projectID string, from, to time.Time) ([]domain.UsageRecord, error)

	// SumCost returns the total cost of records created in [from, to).
	SumCost(ctx context.Context, projectID string, from, to time.Time) (float64, error)

	// ResetUsage removes all records for a project.
	ResetUsage(ctx context.Context, projectID string) error
}

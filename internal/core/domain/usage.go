package domain

import "time"

// OperationKind classifies a billable operation.
type OperationKind string

// Billable operation kinds.
const (
	// OpEmbedding meters embedding provider calls, in tokens.
	OpEmbedding OperationKind = "embedding"

	// OpGeneration meters text generation calls, in tokens.
	OpGeneration OperationKind = "generation"

	// OpStorage meters stored bytes.
	OpStorage OperationKind = "storage"
)

// IsValid returns true if the operation kind is recognised.
func (k OperationKind) IsValid() bool {
	switch k {
	case OpEmbedding, OpGeneration, OpStorage:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k OperationKind) String() string {
	return string(k)
}

// UsageRecord is one metered billable operation. Records are append-only
// and are never rewritten when pricing or budget configuration changes.
type UsageRecord struct {
	// ID is the unique identifier for the record.
	ID string

	// ProjectID links to the owning project.
	ProjectID string

	// Kind is the metered operation.
	Kind OperationKind

	// Quantity is the metered amount: tokens for embedding/generation,
	// bytes for storage.
	Quantity int64

	// Cost is the computed cost at recording time, in currency units.
	Cost float64

	// CreatedAt is when the operation was recorded.
	CreatedAt time.Time
}

// BudgetConfig holds the monthly spending limit for a project.
// Changing it does not retroactively alter past UsageRecords.
type BudgetConfig struct {
	// MonthlyLimit is the budget ceiling in currency units.
	// Zero or negative disables budget alerts.
	MonthlyLimit float64
}

// Enabled reports whether a positive limit is configured.
func (c BudgetConfig) Enabled() bool {
	return c.MonthlyLimit > 0
}

// AlertThresholds are the utilization percentages at which a budget
// alert fires, once per billing period each.
var AlertThresholds = []int{60, 80, 100}

// BudgetAlert is a one-time notification that cumulative spend crossed
// a threshold percentage of the monthly limit.
type BudgetAlert struct {
	// Threshold is the crossed percentage (60, 80 or 100).
	Threshold int

	// Utilization is the utilization percentage at evaluation time.
	// Values above 100 are valid and signal overspend.
	Utilization float64

	// Spend is the period spend at evaluation time.
	Spend float64

	// Limit is the configured monthly limit.
	Limit float64

	// Period identifies the billing period (e.g. "2026-08").
	Period string
}

// BudgetStatus is the result of a budget evaluation.
type BudgetStatus struct {
	// WithinBudget is false once spend meets or exceeds the limit.
	WithinBudget bool

	// Spend is the current period spend.
	Spend float64

	// Limit is the configured monthly limit.
	Limit float64

	// Utilization is Spend/Limit*100, uncapped.
	Utilization float64

	// Projected is the linear extrapolation of the period spend over a
	// full 30-day window.
	Projected float64

	// Alerts holds threshold crossings first observed by this evaluation.
	Alerts []BudgetAlert
}

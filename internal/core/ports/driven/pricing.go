package driven

import "github.com/keepsake-labs/recall-cli/internal/core/domain"

// PricingTable maps an operation kind to a unit price. It is owned by
// configuration tooling outside the core; changing the table never
// rewrites historical UsageRecords.
type PricingTable interface {
	// UnitPrice returns the price of one unit (token or byte) of the
	// given operation kind. Unknown kinds price at zero.
	UnitPrice(kind domain.OperationKind) float64
}

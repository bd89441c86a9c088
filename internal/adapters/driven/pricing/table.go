// Package pricing provides a static pricing table built from settings.
package pricing

import (
	"github.com/keepsake-labs/recall-cli/internal/core/domain"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driven"
)

// Table prices operations from a fixed settings snapshot. Reloading
// settings requires constructing a new Table; records written under an
// older table keep their original cost.
type Table struct {
	prices map[domain.OperationKind]float64
}

// Compile-time check that Table implements the PricingTable interface
var _ driven.PricingTable = (*Table)(nil)

// NewTable creates a pricing table from settings.
func NewTable(settings domain.PricingSettings) *Table {
	return &Table{
		prices: map[domain.OperationKind]float64{
			domain.OpGeneration: settings.GenerationPerToken,
			domain.OpEmbedding:  settings.EmbeddingPerToken,
			domain.OpStorage:    settings.StoragePerByte,
		},
	}
}

// UnitPrice returns the price of one unit of the given operation kind.
// Unknown kinds price at zero.
func (t *Table) UnitPrice(kind domain.OperationKind) float64 {
	return t.prices[kind]
}

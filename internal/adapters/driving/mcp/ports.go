package mcp

import (
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP
// server. This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides ranked retrieval.
	Search driving.SearchService

	// Query answers questions from retrieved context.
	Query driving.QueryService

	// Document lists and reads stored documents.
	Document driving.DocumentService

	// Budget reports spend for the current period.
	Budget driving.BudgetService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Query, Document and Budget are optional; their tools and
	// resources degrade gracefully when absent.
	return nil
}

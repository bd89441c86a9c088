// Package tui provides an interactive chat session over the query
// pipeline, built with Bubbletea.
package tui

import (
	"errors"

	"github.com/keepsake-labs/recall-cli/internal/core/ports/driving"
)

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("tui: query service is required")

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Query answers questions and owns the chat history.
	Query driving.QueryService

	// Budget reports spend for the status bar. Optional.
	Budget driving.BudgetService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}

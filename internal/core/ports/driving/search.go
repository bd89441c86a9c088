package driving

import (
	"context"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

// SearchService ranks a project's chunks against a query.
type SearchService interface {
	// Search returns ranked results, highest score first. Results below
	// the similarity threshold are dropped entirely; an empty result is
	// a normal outcome, not an error.
	Search(ctx context.Context, projectID, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}

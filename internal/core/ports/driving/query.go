package driving

import (
	"context"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

// QueryService answers user questions from retrieved context.
type QueryService interface {
	// Ask runs the full query pipeline for one question and returns the
	// assistant's reply. For any non-blank question the user message and
	// the reply are both appended to the project's chat history,
	// including guidance and failure replies, so history grows by
	// exactly two per call.
	Ask(ctx context.Context, projectID, question string) (*domain.ChatMessage, error)

	// History returns the project's chat history in order.
	History(ctx context.Context, projectID string) ([]domain.ChatMessage, error)

	// ClearHistory removes the project's chat history. This is the only
	// way chat messages are truncated.
	ClearHistory(ctx context.Context, projectID string) error
}

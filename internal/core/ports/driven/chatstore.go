package driven

import (
	"context"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

// ChatStore persists chat history per project.
// Messages are append-only; only ClearMessages truncates them.
type ChatStore interface {
	// AppendMessage stores a new message.
	AppendMessage(ctx context.Context, msg *domain.ChatMessage) error

	// ListMessages returns a project's messages in insertion order.
	ListMessages(ctx context.Context, projectID string) ([]domain.ChatMessage, error)

	// ClearMessages removes all messages for a project.
	ClearMessages(ctx context.Context, projectID string) error
}

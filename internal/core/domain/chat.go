package domain

import "time"

// MessageRole identifies the author of a chat message.
type MessageRole string

// Available message roles.
const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// IsValid returns true if the role is recognised.
func (r MessageRole) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ChatMessage is one turn in a project's chat history.
// Messages are append-only; only an explicit "clear chat" truncates them.
type ChatMessage struct {
	// ID is the unique identifier for the message.
	ID string

	// ProjectID links to the owning project.
	ProjectID string

	// Role is who authored the message.
	Role MessageRole

	// Content is the message text.
	Content string

	// Sources lists the search results the answer was grounded on.
	// Empty for user messages and for answers with no context.
	Sources []SearchResult

	// Usage holds generation metadata when the message was produced by
	// a successful provider call.
	Usage *MessageUsage

	// CreatedAt is when the message was appended.
	CreatedAt time.Time
}

// MessageUsage captures the cost of producing an assistant message.
type MessageUsage struct {
	// TokensUsed is the total token count reported by the provider.
	TokensUsed int

	// Cost is the computed cost in currency units.
	Cost float64

	// LatencyMs is the provider round-trip time in milliseconds.
	LatencyMs int64

	// Model identifies the generation model.
	Model string
}

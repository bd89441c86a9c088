package driven

import "context"

// IncomingDocument is a raw document supplied by a DocumentSource.
type IncomingDocument struct {
	// ProjectID is the project the document belongs to.
	ProjectID string

	// Name is the display name (usually the file name).
	Name string

	// Content is the raw text.
	Content string

	// ContentType tags the original format.
	ContentType string
}

// DocumentSource supplies documents for ingestion. Upload UIs, watched
// directories and cloud sync are all valid sources; the core only
// consumes this contract and never implements a particular source.
type DocumentSource interface {
	// Documents returns a channel of incoming documents and a channel of
	// source-level errors. Both channels are closed when the source is
	// exhausted or the context is cancelled.
	Documents(ctx context.Context) (<-chan IncomingDocument, <-chan error)

	// Close releases resources.
	Close() error
}

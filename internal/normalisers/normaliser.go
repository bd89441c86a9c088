// Package normalisers converts raw file formats into plain text
// suitable for chunking and embedding. Markup formats lose their
// syntax but keep their prose; unknown formats pass through unchanged.
package normalisers

// Normaliser cleans one family of content types into plain text.
type Normaliser interface {
	// ContentTypes lists the MIME types this normaliser handles.
	ContentTypes() []string

	// Normalise strips format syntax from content, returning plain text.
	Normalise(content string) string
}

// Registry routes content to the normaliser registered for its type.
type Registry struct {
	byType map[string]Normaliser
}

// NewRegistry builds a registry from the given normalisers. Later
// registrations win when two normalisers claim the same content type.
func NewRegistry(normalisers ...Normaliser) *Registry {
	byType := make(map[string]Normaliser)
	for _, n := range normalisers {
		for _, ct := range n.ContentTypes() {
			byType[ct] = n
		}
	}
	return &Registry{byType: byType}
}

// Default returns a registry with the built-in normalisers.
func Default() *Registry {
	return NewRegistry(
		&Plaintext{},
		&Markdown{},
		&HTML{},
	)
}

// Normalise cleans content according to its content type. Content
// types without a registered normaliser pass through unchanged.
func (r *Registry) Normalise(contentType, content string) string {
	n, ok := r.byType[contentType]
	if !ok {
		return content
	}
	return n.Normalise(content)
}

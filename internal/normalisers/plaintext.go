package normalisers

import "strings"

// Plaintext tidies plain text formats without altering their content.
type Plaintext struct{}

var _ Normaliser = (*Plaintext)(nil)

func (n *Plaintext) ContentTypes() []string {
	return []string{"text/plain", "text/csv", "text/x-log"}
}

// Normalise standardises line endings, strips a UTF-8 BOM if present,
// and collapses runs of blank lines.
func (n *Plaintext) Normalise(content string) string {
	content = strings.TrimPrefix(content, "\uFEFF")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = multiNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

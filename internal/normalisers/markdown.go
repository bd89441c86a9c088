package normalisers

import (
	"regexp"
	"strings"
)

// Markdown strips formatting syntax from markdown, keeping the prose.
type Markdown struct{}

var _ Normaliser = (*Markdown)(nil)

// Precompiled patterns for markdown stripping.
var (
	codeBlocks     = regexp.MustCompile("(?s)```[^`]*```")
	inlineCode     = regexp.MustCompile("`[^`]+`")
	mdImages       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	mdLinks        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headingMarkers = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquotes    = regexp.MustCompile(`(?m)^>\s*`)
	horizontalRule = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	bulletMarkers  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberMarkers  = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
)

func (n *Markdown) ContentTypes() []string {
	return []string{"text/markdown"}
}

// Normalise removes common markdown syntax. Links keep their text,
// code blocks and images are dropped entirely.
func (n *Markdown) Normalise(content string) string {
	content = codeBlocks.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "")
	content = mdImages.ReplaceAllString(content, "")
	content = mdLinks.ReplaceAllString(content, "$1")
	content = headingMarkers.ReplaceAllString(content, "")

	// Emphasis markers
	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")
	content = strings.ReplaceAll(content, "_", " ")

	content = blockquotes.ReplaceAllString(content, "")
	content = horizontalRule.ReplaceAllString(content, "")
	content = bulletMarkers.ReplaceAllString(content, "")
	content = numberMarkers.ReplaceAllString(content, "")

	content = multiNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

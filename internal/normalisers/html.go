package normalisers

import (
	"html"
	"regexp"
	"strings"
)

// HTML strips markup from HTML documents, keeping the readable text.
type HTML struct{}

var _ Normaliser = (*HTML)(nil)

// Precompiled patterns for HTML stripping.
var (
	scriptTag          = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag           = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag        = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag            = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag             = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments       = regexp.MustCompile(`(?s)<!--.*?-->`)
	openBlockElements  = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	closeBlockElements = regexp.MustCompile(`(?i)</(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	brTags             = regexp.MustCompile(`(?i)<br\s*/?>`)
	hrTags             = regexp.MustCompile(`(?i)<hr\s*/?>`)
	allTags            = regexp.MustCompile(`<[^>]+>`)
	multiSpaces        = regexp.MustCompile(`[ \t]+`)
	multiNewlines      = regexp.MustCompile(`\n{3,}`)
)

func (n *HTML) ContentTypes() []string {
	return []string{"text/html", "application/xml", "image/svg+xml"}
}

// Normalise removes tags and non-content sections, decodes entities,
// and collapses the result into trimmed non-empty lines.
func (n *HTML) Normalise(content string) string {
	// Drop sections that carry no readable text
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = svgTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	// Block boundaries become line breaks so text stays readable
	content = openBlockElements.ReplaceAllString(content, "\n")
	content = closeBlockElements.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")
	content = hrTags.ReplaceAllString(content, "\n")

	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	content = multiSpaces.ReplaceAllString(content, " ")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	// Trim each line and drop the empty ones
	var lines []string //nolint:prealloc // size unknown until filtered
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

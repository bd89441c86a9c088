package services

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases text and splits it into a deduplicated token set,
// preserving first-seen order. Used for keyword scoring at both ingestion
// and query time so the two sides always agree.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}

	return tokens
}

// EstimateTokens approximates the billable token count of a text at the
// common 4-characters-per-token heuristic. Used for embedding calls,
// where providers do not uniformly report usage.
func EstimateTokens(text string) int64 {
	if text == "" {
		return 0
	}
	return int64((len(text) + 3) / 4)
}

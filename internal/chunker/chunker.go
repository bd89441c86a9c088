// Package chunker splits document text into overlapping fixed-size windows.
package chunker

import (
	"fmt"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

// Span is one chunk of text with its character-offset range within the
// source document. Offsets count runes, not bytes, so multi-byte text
// never splits inside a character.
type Span struct {
	// Text is the chunk content.
	Text string

	// Start is the rune offset of the span start in the source text.
	Start int

	// End is the rune offset one past the span end.
	End int

	// Index is the ordinal position of the chunk.
	Index int
}

// Chunker produces deterministic overlapping windows: the same text and
// configuration always yield the same spans, so re-ingestion of an
// unchanged document is idempotent.
type Chunker struct {
	size    int
	overlap int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithSize sets the maximum chunk length in characters.
func WithSize(size int) Option {
	return func(c *Chunker) {
		c.size = size
	}
}

// WithOverlap sets the number of characters each chunk shares with the
// previous one, so context is not lost at boundaries.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a chunker. Size must be positive and overlap must satisfy
// 0 <= overlap < size; anything else wraps domain.ErrInvalidInput.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		size:    domain.DefaultChunkSize,
		overlap: domain.DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, c.size)
	}
	if c.overlap < 0 || c.overlap >= c.size {
		return nil, fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d",
			domain.ErrInvalidInput, c.size, c.overlap)
	}

	return c, nil
}

// Size returns the configured maximum chunk length.
func (c *Chunker) Size() int {
	return c.size
}

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Chunk splits text into ordered overlapping spans. Empty text yields
// zero spans. Text shorter than the chunk size yields a single span
// equal to the full text.
func (c *Chunker) Chunk(text string) []Span {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	total := len(runes)
	step := c.size - c.overlap

	spans := make([]Span, 0, total/step+1)

	index := 0
	for start := 0; start < total; start += step {
		end := start + c.size
		if end > total {
			end = total
		}

		spans = append(spans, Span{
			Text:  string(runes[start:end]),
			Start: start,
			End:   end,
			Index: index,
		})
		index++
	}

	return spans
}

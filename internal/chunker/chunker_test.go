package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c, err := New()
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultChunkSize, c.Size())
		assert.Equal(t, domain.DefaultChunkOverlap, c.Overlap())
	})

	t.Run("custom size and overlap", func(t *testing.T) {
		c, err := New(WithSize(100), WithOverlap(20))
		require.NoError(t, err)
		assert.Equal(t, 100, c.Size())
		assert.Equal(t, 20, c.Overlap())
	})

	t.Run("zero size rejected", func(t *testing.T) {
		_, err := New(WithSize(0))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("negative overlap rejected", func(t *testing.T) {
		_, err := New(WithSize(100), WithOverlap(-1))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("overlap equal to size rejected", func(t *testing.T) {
		_, err := New(WithSize(100), WithOverlap(100))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestChunkDegenerateCases(t *testing.T) {
	c, err := New(WithSize(100), WithOverlap(20))
	require.NoError(t, err)

	t.Run("empty text yields zero chunks", func(t *testing.T) {
		assert.Empty(t, c.Chunk(""))
	})

	t.Run("short text yields single full chunk", func(t *testing.T) {
		spans := c.Chunk("hello world")
		require.Len(t, spans, 1)
		assert.Equal(t, "hello world", spans[0].Text)
		assert.Equal(t, 0, spans[0].Start)
		assert.Equal(t, 11, spans[0].End)
		assert.Equal(t, 0, spans[0].Index)
	})
}

func TestChunkBoundaryArithmetic(t *testing.T) {
	// size=100, overlap=20, length=250: starts advance by 80.
	c, err := New(WithSize(100), WithOverlap(20))
	require.NoError(t, err)

	text := strings.Repeat("a", 250)
	spans := c.Chunk(text)

	require.Len(t, spans, 4)

	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, 100, spans[0].End)
	assert.Equal(t, 80, spans[1].Start)
	assert.Equal(t, 180, spans[1].End)
	assert.Equal(t, 160, spans[2].Start)
	assert.Equal(t, 250, spans[2].End)
	assert.Equal(t, 240, spans[3].Start)
	assert.Equal(t, 250, spans[3].End)

	for i, span := range spans {
		assert.Equal(t, i, span.Index)
		assert.LessOrEqual(t, span.End-span.Start, 100)
	}
}

func TestChunkOverlapInvariant(t *testing.T) {
	t.Run("with overlap spans overlap", func(t *testing.T) {
		c, err := New(WithSize(50), WithOverlap(10))
		require.NoError(t, err)

		spans := c.Chunk(strings.Repeat("x", 200))
		require.Greater(t, len(spans), 1)
		for i := 1; i < len(spans); i++ {
			assert.Less(t, spans[i].Start, spans[i-1].End)
		}
	})

	t.Run("without overlap spans abut", func(t *testing.T) {
		c, err := New(WithSize(50), WithOverlap(0))
		require.NoError(t, err)

		spans := c.Chunk(strings.Repeat("x", 200))
		require.Greater(t, len(spans), 1)
		for i := 1; i < len(spans); i++ {
			assert.Equal(t, spans[i-1].End, spans[i].Start)
		}
	})
}

func TestChunkCoverage(t *testing.T) {
	// Concatenating spans minus the overlapping prefixes reconstructs
	// the original text exactly.
	c, err := New(WithSize(40), WithOverlap(15))
	require.NoError(t, err)

	text := "The quick brown fox jumps over the lazy dog. " +
		"Pack my box with five dozen liquor jugs. " +
		"Sphinx of black quartz, judge my vow."
	spans := c.Chunk(text)

	var rebuilt strings.Builder
	prevEnd := 0
	for _, span := range spans {
		runes := []rune(span.Text)
		skip := prevEnd - span.Start
		if skip < 0 {
			skip = 0
		}
		if skip < len(runes) {
			rebuilt.WriteString(string(runes[skip:]))
		}
		if span.End > prevEnd {
			prevEnd = span.End
		}
	}

	assert.Equal(t, text, rebuilt.String())
}

func TestChunkDeterminism(t *testing.T) {
	c, err := New(WithSize(64), WithOverlap(16))
	require.NoError(t, err)

	text := strings.Repeat("determinism matters for idempotent re-ingestion. ", 20)
	first := c.Chunk(text)
	second := c.Chunk(text)

	assert.Equal(t, first, second)
}

func TestChunkMultibyteText(t *testing.T) {
	c, err := New(WithSize(10), WithOverlap(2))
	require.NoError(t, err)

	text := strings.Repeat("héllo wörld ", 5)
	spans := c.Chunk(text)

	require.NotEmpty(t, spans)
	for _, span := range spans {
		// Offsets are rune counts; the text must round-trip cleanly.
		assert.Equal(t, span.End-span.Start, len([]rune(span.Text)))
		assert.True(t, strings.Contains(text, span.Text))
	}
}

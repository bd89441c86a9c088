// Package hashing provides an in-process embedding service built on
// token feature hashing. It needs no network, no API key and no model
// download, which makes it the default provider for fully local setups.
//
// Vectors are produced by hashing each token into one of a fixed number
// of buckets and L2-normalising the bucket counts. The result captures
// lexical overlap only; it is deterministic across runs and platforms,
// so vectors written at ingestion time always compare cleanly against
// query vectors.
package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/keepsake-labs/recall-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultDimensions = 256
	modelPrefix       = "feature-hashing"
)

// EmbeddingService generates deterministic local embeddings.
type EmbeddingService struct {
	dimensions int
	model      string
}

// NewEmbeddingService creates a hashing embedder. A non-positive
// dimensions falls back to DefaultDimensions. The model name encodes
// the dimensionality so vectors of different sizes never mix.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{
		dimensions: dimensions,
		model:      modelName(dimensions),
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, s.dimensions)
	for _, token := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(token)) //nolint:errcheck // fnv never fails
		vec[h.Sum32()%uint32(s.dimensions)]++
	}
	normalise(vec)
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping always succeeds; there is nothing remote to reach.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// modelName tags vectors with their dimensionality, e.g.
// "feature-hashing-256".
func modelName(dimensions int) string {
	return modelPrefix + "-" + strconv.Itoa(dimensions)
}

// tokenize lower-cases and splits on non-alphanumeric runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// normalise scales the vector to unit length in place.
func normalise(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}

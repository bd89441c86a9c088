package domain

const unknownDescription = "Unknown"

// SearchAlgorithm selects how chunks are ranked against a query.
type SearchAlgorithm string

// Available search algorithms.
const (
	// SearchKeyword ranks by lexical token overlap only.
	SearchKeyword SearchAlgorithm = "keyword"

	// SearchSemantic ranks by cosine similarity of embeddings only.
	SearchSemantic SearchAlgorithm = "semantic"

	// SearchHybrid combines keyword and semantic scores as a weighted sum.
	SearchHybrid SearchAlgorithm = "hybrid"
)

// IsValid returns true if the algorithm is recognised.
func (a SearchAlgorithm) IsValid() bool {
	switch a {
	case SearchKeyword, SearchSemantic, SearchHybrid:
		return true
	default:
		return false
	}
}

// RequiresEmbedding returns true if this algorithm needs an embedding provider.
func (a SearchAlgorithm) RequiresEmbedding() bool {
	return a == SearchSemantic || a == SearchHybrid
}

// String returns the string representation.
func (a SearchAlgorithm) String() string {
	return string(a)
}

// Description returns a human-readable description of the algorithm.
func (a SearchAlgorithm) Description() string {
	switch a {
	case SearchKeyword:
		return "Keyword (token overlap)"
	case SearchSemantic:
		return "Semantic (vector similarity)"
	case SearchHybrid:
		return "Hybrid (keyword + semantic)"
	default:
		return unknownDescription
	}
}

// Default search option values.
const (
	DefaultTopK = 5

	// DefaultKeywordWeight and DefaultSemanticWeight are the hybrid
	// combination weights. The 0.5/0.5 split is a configurable default,
	// not a calibrated value; changing it materially changes ranking.
	DefaultKeywordWeight  = 0.5
	DefaultSemanticWeight = 0.5
)

// SearchOptions configures a search query.
type SearchOptions struct {
	// Algorithm selects the ranking strategy. Defaults to SearchHybrid
	// when an embedding provider is available, SearchKeyword otherwise.
	Algorithm SearchAlgorithm

	// TopK bounds the number of results after filtering and scoring.
	// Defaults to DefaultTopK when zero or negative.
	TopK int

	// SimilarityThreshold drops results scoring below it entirely.
	// Zero keeps everything with a positive score.
	SimilarityThreshold float64

	// KeywordWeight is the hybrid weight applied to the keyword score.
	KeywordWeight float64

	// SemanticWeight is the hybrid weight applied to the semantic score.
	SemanticWeight float64
}

// Normalised returns a copy with defaults applied.
func (o SearchOptions) Normalised() SearchOptions {
	if !o.Algorithm.IsValid() {
		o.Algorithm = SearchHybrid
	}
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.KeywordWeight <= 0 && o.SemanticWeight <= 0 {
		o.KeywordWeight = DefaultKeywordWeight
		o.SemanticWeight = DefaultSemanticWeight
	}
	return o
}

// SearchResult represents a single ranked hit.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// DocumentName is the display name of the originating document.
	DocumentName string

	// Score is the similarity score in [0,1], highest first.
	Score float64

	// Algorithm is the algorithm that produced the score.
	Algorithm SearchAlgorithm

	// Snippet is a short display excerpt of the chunk content.
	Snippet string
}

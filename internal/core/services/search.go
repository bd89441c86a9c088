package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driven"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driving"
	"github.com/keepsake-labs/recall-cli/internal/logger"
)

// Ensure SearchEngine implements the interface.
var _ driving.SearchService = (*SearchEngine)(nil)

// snippetLength is the maximum display snippet size in characters.
const snippetLength = 160

// scoredChunk holds intermediate results before hydration.
type scoredChunk struct {
	chunk domain.Chunk
	score float64
}

// SearchEngine ranks a project's chunks against a query using keyword
// overlap, vector similarity, or a weighted hybrid of both.
type SearchEngine struct {
	docStore driven.DocumentStore
	embedder driven.EmbeddingService
}

// NewSearchEngine creates a new search engine.
// The embedder is optional (can be nil); without it, semantic and hybrid
// requests degrade to keyword search.
func NewSearchEngine(docStore driven.DocumentStore, embedder driven.EmbeddingService) *SearchEngine {
	return &SearchEngine{
		docStore: docStore,
		embedder: embedder,
	}
}

// Search returns ranked results, highest score first.
func (e *SearchEngine) Search(
	ctx context.Context, projectID, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q, project: %s", query, projectID)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	opts = opts.Normalised()
	algorithm := e.effectiveAlgorithm(opts.Algorithm)
	logger.Info("Effective algorithm: %s", algorithm.Description())

	chunks, err := e.docStore.ListChunks(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	logger.Debug("Scoring %d chunks", len(chunks))

	var scored []scoredChunk
	switch algorithm {
	case domain.SearchKeyword:
		scored = e.keywordScores(query, chunks)
	case domain.SearchSemantic:
		scored, err = e.semanticScores(ctx, query, chunks)
	case domain.SearchHybrid:
		scored, err = e.hybridScores(ctx, query, chunks, opts)
	default:
		scored = e.keywordScores(query, chunks)
	}
	if err != nil {
		return nil, fmt.Errorf("score chunks: %w", err)
	}

	// Results below the threshold are dropped entirely, not down-ranked.
	// Zero-score chunks are never results.
	filtered := scored[:0]
	for _, sc := range scored {
		if sc.score > 0 && sc.score >= opts.SimilarityThreshold {
			filtered = append(filtered, sc)
		}
	}
	logger.Debug("After threshold %.2f: %d of %d", opts.SimilarityThreshold, len(filtered), len(scored))

	names, err := e.documentNames(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load document names: %w", err)
	}

	e.sortDeterministic(filtered, names)

	if len(filtered) > opts.TopK {
		filtered = filtered[:opts.TopK]
	}

	results := make([]domain.SearchResult, len(filtered))
	for i, sc := range filtered {
		results[i] = domain.SearchResult{
			Chunk:        sc.chunk,
			DocumentName: names[sc.chunk.DocumentID],
			Score:        sc.score,
			Algorithm:    algorithm,
			Snippet:      makeSnippet(sc.chunk.Content, query),
		}
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}

// effectiveAlgorithm degrades embedding-dependent algorithms to keyword
// search when no embedding provider is available.
func (e *SearchEngine) effectiveAlgorithm(requested domain.SearchAlgorithm) domain.SearchAlgorithm {
	if requested.RequiresEmbedding() && e.embedder == nil {
		logger.Warn("%s search requested but no embedding provider configured, using keyword", requested)
		return domain.SearchKeyword
	}
	return requested
}

// keywordScores scores each chunk by lexical token overlap:
// (overlapping tokens) / (query tokens).
func (e *SearchEngine) keywordScores(query string, chunks []domain.Chunk) []scoredChunk {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	scored := make([]scoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		scored = append(scored, scoredChunk{
			chunk: chunk,
			score: keywordScore(queryTokens, chunkTokens(chunk)),
		})
	}
	return scored
}

// semanticScores embeds the query and scores each chunk by cosine
// similarity. Chunks embedded with a different model or dimensionality
// than the query embedding are excluded rather than faulting.
func (e *SearchEngine) semanticScores(
	ctx context.Context, query string, chunks []domain.Chunk,
) ([]scoredChunk, error) {
	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	model := e.embedder.ModelName()

	scored := make([]scoredChunk, 0, len(chunks))
	excluded := 0
	for _, chunk := range chunks {
		if !comparableEmbedding(chunk, queryVec, model) {
			excluded++
			continue
		}
		scored = append(scored, scoredChunk{
			chunk: chunk,
			score: cosineSimilarity(queryVec, chunk.Embedding),
		})
	}
	if excluded > 0 {
		logger.Warn("Excluded %d chunks with incompatible embeddings", excluded)
	}
	return scored, nil
}

// hybridScores combines keyword and semantic scores as a weighted sum.
// Weights are normalised to sum to 1, so the hybrid score always lies
// between the two component scores.
func (e *SearchEngine) hybridScores(
	ctx context.Context, query string, chunks []domain.Chunk, opts domain.SearchOptions,
) ([]scoredChunk, error) {
	queryTokens := Tokenize(query)
	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	model := e.embedder.ModelName()

	wk, ws := normaliseWeights(opts.KeywordWeight, opts.SemanticWeight)
	logger.Debug("Hybrid weights: keyword=%.2f semantic=%.2f", wk, ws)

	scored := make([]scoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		kw := keywordScore(queryTokens, chunkTokens(chunk))
		sem := 0.0
		if comparableEmbedding(chunk, queryVec, model) {
			sem = cosineSimilarity(queryVec, chunk.Embedding)
		}
		scored = append(scored, scoredChunk{
			chunk: chunk,
			score: wk*kw + ws*sem,
		})
	}
	return scored, nil
}

// sortDeterministic orders by score descending, breaking ties by chunk
// recency (most recently ingested first), then document name, then
// chunk index for full determinism.
func (e *SearchEngine) sortDeterministic(scored []scoredChunk, names map[string]string) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		ti, tj := scored[i].chunk.CreatedAt, scored[j].chunk.CreatedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		ni, nj := names[scored[i].chunk.DocumentID], names[scored[j].chunk.DocumentID]
		if ni != nj {
			return ni < nj
		}
		return scored[i].chunk.Index < scored[j].chunk.Index
	})
}

// documentNames maps document IDs to display names for result hydration.
func (e *SearchEngine) documentNames(ctx context.Context, projectID string) (map[string]string, error) {
	docs, err := e.docStore.ListDocuments(ctx, projectID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(docs))
	for _, doc := range docs {
		names[doc.ID] = doc.Name
	}
	return names, nil
}

// chunkTokens returns the precomputed keyword index, tokenizing on the
// fly for chunks ingested without one.
func chunkTokens(chunk domain.Chunk) []string {
	if len(chunk.Keywords) > 0 {
		return chunk.Keywords
	}
	return Tokenize(chunk.Content)
}

// keywordScore computes (overlapping tokens) / (query tokens).
func keywordScore(queryTokens, chunkTokens []string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(chunkTokens))
	for _, t := range chunkTokens {
		set[t] = struct{}{}
	}
	overlap := 0
	for _, t := range queryTokens {
		if _, ok := set[t]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(queryTokens))
}

// comparableEmbedding reports whether a chunk's embedding can be scored
// against the query vector.
func comparableEmbedding(chunk domain.Chunk, queryVec []float32, model string) bool {
	if !chunk.HasEmbedding() {
		return false
	}
	if len(chunk.Embedding) != len(queryVec) {
		return false
	}
	return chunk.EmbeddingModel == model
}

// cosineSimilarity computes the cosine of the angle between two vectors,
// clamped into [0,1]. Negative similarity carries no ranking value for
// retrieval and is treated as zero.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cos < 0 {
		return 0
	}
	if cos > 1 {
		return 1
	}
	return cos
}

// normaliseWeights scales the hybrid weights so they sum to 1.
func normaliseWeights(keyword, semantic float64) (float64, float64) {
	if keyword < 0 {
		keyword = 0
	}
	if semantic < 0 {
		semantic = 0
	}
	total := keyword + semantic
	if total == 0 {
		return domain.DefaultKeywordWeight, domain.DefaultSemanticWeight
	}
	return keyword / total, semantic / total
}

// makeSnippet creates a short display excerpt, centred on the first
// query term match when one exists.
func makeSnippet(content, query string) string {
	runes := []rune(content)
	if len(runes) <= snippetLength {
		return content
	}

	start := 0
	lower := strings.ToLower(content)
	for _, term := range Tokenize(query) {
		if idx := strings.Index(lower, term); idx >= 0 {
			// Back up so the match sits inside the window.
			start = len([]rune(lower[:idx]))
			if start > snippetLength/2 {
				start -= snippetLength / 2
			} else {
				start = 0
			}
			break
		}
	}

	end := start + snippetLength
	if end > len(runes) {
		end = len(runes)
		start = end - snippetLength
	}

	snippet := strings.TrimSpace(string(runes[start:end]))
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet += "..."
	}
	return snippet
}

package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query     string  `json:"query" jsonschema:"the search query to match against stored chunks"`
	Limit     int     `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
	Algorithm string  `json:"algorithm,omitempty" jsonschema:"ranking algorithm: keyword, semantic or hybrid (default hybrid)"`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"minimum score to include a result"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentName string  `json:"document_name"`
	ChunkIndex   int     `json:"chunk_index"`
	Score        float64 `json:"score"`
	Snippet      string  `json:"snippet,omitempty"`
	Content      string  `json:"content,omitempty"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the stored documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string               `json:"answer"`
	Sources []SearchResultOutput `json:"sources,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the project's stored documents",
	}, s.handleSearch)

	if s.ports.Query != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Ask a question answered from the project's stored documents",
		}, s.handleAsk)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		TopK:                input.Limit,
		SimilarityThreshold: input.Threshold,
		Algorithm:           domain.SearchAlgorithm(input.Algorithm),
	}

	results, err := s.ports.Search.Search(ctx, s.projectID, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = searchResultOutput(results[i], true)
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Query == nil {
		return nil, AskOutput{}, errors.New("query service not available")
	}

	reply, err := s.ports.Query.Ask(ctx, s.projectID, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:  reply.Content,
		Sources: make([]SearchResultOutput, len(reply.Sources)),
	}
	for i := range reply.Sources {
		output.Sources[i] = searchResultOutput(reply.Sources[i], false)
	}

	return nil, output, nil
}

func searchResultOutput(res domain.SearchResult, includeContent bool) SearchResultOutput {
	out := SearchResultOutput{
		DocumentName: res.DocumentName,
		ChunkIndex:   res.Chunk.Index,
		Score:        res.Score,
		Snippet:      res.Snippet,
	}
	if includeContent {
		out.Content = res.Chunk.Content
	}
	return out
}

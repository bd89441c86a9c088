package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driven"
)

// mockEmbedder returns canned vectors keyed by text, or a fixed fallback.
type mockEmbedder struct {
	mu        sync.Mutex
	vectors   map[string][]float32
	fallback  []float32
	model     string
	embedErr  error
	calls     int
	batchSize []int
}

func newMockEmbedder(model string, fallback []float32) *mockEmbedder {
	return &mockEmbedder{
		vectors:  make(map[string][]float32),
		fallback: fallback,
		model:    model,
	}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if vec, ok := m.vectors[text]; ok {
		return vec, nil
	}
	return m.fallback, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchSize = append(m.batchSize, len(texts))
	m.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return len(m.fallback) }
func (m *mockEmbedder) ModelName() string            { return m.model }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockGenerator returns one canned result or a fixed error.
type mockGenerator struct {
	mu      sync.Mutex
	result  *driven.GenerationResult
	err     error
	calls   int
	prompts []string
	opts    []driven.GenerateOptions
}

func (m *mockGenerator) Generate(
	_ context.Context, prompt string, opts driven.GenerateOptions,
) (*driven.GenerationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &driven.GenerationResult{Text: "canned answer", TokensUsed: 10, Model: "mock"}, nil
}

func (m *mockGenerator) ModelName() string            { return "mock" }
func (m *mockGenerator) Ping(_ context.Context) error { return nil }
func (m *mockGenerator) Close() error                 { return nil }

// staticPricing prices every kind at one flat rate.
type staticPricing struct {
	prices map[domain.OperationKind]float64
}

func (p staticPricing) UnitPrice(kind domain.OperationKind) float64 {
	return p.prices[kind]
}

// channelSource feeds a fixed batch of documents, then closes.
type channelSource struct {
	docs []driven.IncomingDocument
	err  error
}

func (s *channelSource) Documents(_ context.Context) (<-chan driven.IncomingDocument, <-chan error) {
	docs := make(chan driven.IncomingDocument, len(s.docs))
	errs := make(chan error, 1)
	for _, doc := range s.docs {
		docs <- doc
	}
	if s.err != nil {
		errs <- s.err
	}
	close(docs)
	close(errs)
	return docs, errs
}

func (s *channelSource) Close() error { return nil }

// failingDocStore wraps a DocumentStore and fails SaveDocument.
type failingDocStore struct {
	driven.DocumentStore
	saveErr error
}

func (f *failingDocStore) SaveDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.DocumentStore.SaveDocument(ctx, doc, chunks)
}

var errBoom = fmt.Errorf("boom")

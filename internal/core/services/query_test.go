package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsake-labs/recall-cli/internal/adapters/driven/storage/memory"
	"github.com/keepsake-labs/recall-cli/internal/core/domain"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driven"
)

// queryFixture wires an orchestrator over the in-memory store with a
// keyword search engine.
type queryFixture struct {
	store     *memory.Store
	generator *mockGenerator
	ledger    *Ledger
	orch      *QueryOrchestrator
}

func newQueryFixture(t *testing.T, opts ...QueryOption) *queryFixture {
	t.Helper()
	store := memory.NewStore(0)
	generator := &mockGenerator{}
	ledger := NewLedger(store, testPricing(), domain.BudgetConfig{MonthlyLimit: 100})

	base := []QueryOption{
		WithSearchOptions(domain.SearchOptions{Algorithm: domain.SearchKeyword}),
	}
	orch := NewQueryOrchestrator(
		NewSearchEngine(store, nil), generator, store, store, ledger,
		append(base, opts...)...,
	)
	return &queryFixture{store: store, generator: generator, ledger: ledger, orch: orch}
}

func (f *queryFixture) usageCount(t *testing.T) int {
	t.Helper()
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	records, err := f.store.ListUsage(context.Background(), "proj", from, from.AddDate(0, 1, 0))
	require.NoError(t, err)
	return len(records)
}

func TestAsk_AnswersFromContext(t *testing.T) {
	f := newQueryFixture(t)
	seedDocument(t, f.store, "proj", "handbook.md",
		[]string{"Employees accrue 20 days of annual leave under the leave policy."},
		nil, "", time.Now())
	f.generator.result = &driven.GenerationResult{
		Text: "You accrue 20 days of annual leave.", TokensUsed: 42, Model: "mock",
	}

	reply, err := f.orch.Ask(context.Background(), "proj", "what is the leave policy?")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAssistant, reply.Role)
	assert.Equal(t, "You accrue 20 days of annual leave.", reply.Content)
	require.Len(t, reply.Sources, 1)
	assert.Equal(t, "handbook.md", reply.Sources[0].DocumentName)
	require.NotNil(t, reply.Usage)
	assert.Equal(t, 42, reply.Usage.TokensUsed)
	assert.Positive(t, reply.Usage.Cost)

	// The prompt carried the retrieved chunk and the question.
	require.Len(t, f.generator.prompts, 1)
	assert.Contains(t, f.generator.prompts[0], "annual leave")
	assert.Contains(t, f.generator.prompts[0], "what is the leave policy?")

	history, err := f.orch.History(context.Background(), "proj")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, domain.RoleAssistant, history[1].Role)

	assert.Equal(t, 1, f.usageCount(t))
}

func TestAsk_BlankQuestionNotPersisted(t *testing.T) {
	f := newQueryFixture(t)

	reply, err := f.orch.Ask(context.Background(), "proj", "   ")
	require.NoError(t, err)
	assert.Equal(t, emptyQuestionReply, reply.Content)

	history, err := f.orch.History(context.Background(), "proj")
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Zero(t, f.generator.calls)
}

func TestAsk_NoDocuments(t *testing.T) {
	f := newQueryFixture(t)

	reply, err := f.orch.Ask(context.Background(), "proj", "anything at all?")
	require.NoError(t, err)
	assert.Equal(t, noDocumentsReply, reply.Content)
	assert.Empty(t, reply.Sources)

	// No search hit the generator and nothing was metered.
	assert.Zero(t, f.generator.calls)
	assert.Zero(t, f.usageCount(t))

	history, err := f.orch.History(context.Background(), "proj")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestAsk_NoContextDeclines(t *testing.T) {
	f := newQueryFixture(t)
	seedDocument(t, f.store, "proj", "unrelated.md",
		[]string{"completely different topic"}, nil, "", time.Now())

	reply, err := f.orch.Ask(context.Background(), "proj", "quarterly revenue figures?")
	require.NoError(t, err)
	assert.Equal(t, noContextReply, reply.Content)
	assert.Empty(t, reply.Sources)
	assert.Nil(t, reply.Usage)

	// Declining costs nothing: no generation call, no usage record.
	assert.Zero(t, f.generator.calls)
	assert.Zero(t, f.usageCount(t))
}

func TestAsk_GenerationFailureKeepsSessionUsable(t *testing.T) {
	f := newQueryFixture(t)
	seedDocument(t, f.store, "proj", "doc.md",
		[]string{"relevant policy content"}, nil, "", time.Now())
	f.generator.err = domain.ErrGenerationFailed

	reply, err := f.orch.Ask(context.Background(), "proj", "policy?")
	require.NoError(t, err)
	assert.Contains(t, reply.Content, "couldn't generate an answer")
	assert.Nil(t, reply.Usage)

	// Failed generations are never billed.
	assert.Zero(t, f.usageCount(t))

	// The session stays usable: a retry succeeds.
	f.generator.err = nil
	reply, err = f.orch.Ask(context.Background(), "proj", "policy?")
	require.NoError(t, err)
	assert.Equal(t, "canned answer", reply.Content)

	history, err := f.orch.History(context.Background(), "proj")
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestAsk_RepeatedFailuresGrowHistoryByTwo(t *testing.T) {
	f := newQueryFixture(t)
	seedDocument(t, f.store, "proj", "doc.md",
		[]string{"policy content"}, nil, "", time.Now())
	f.generator.err = domain.ErrGenerationFailed

	for i := 0; i < 3; i++ {
		_, err := f.orch.Ask(context.Background(), "proj", "policy?")
		require.NoError(t, err)
	}

	history, err := f.orch.History(context.Background(), "proj")
	require.NoError(t, err)
	assert.Len(t, history, 6)
	assert.Zero(t, f.usageCount(t))
}

func TestAsk_NoGenerator(t *testing.T) {
	store := memory.NewStore(0)
	orch := NewQueryOrchestrator(NewSearchEngine(store, nil), nil, store, store, nil)

	_, err := orch.Ask(context.Background(), "proj", "question?")
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestAsk_SystemPromptAndSampling(t *testing.T) {
	f := newQueryFixture(t,
		WithSystemPrompt("Answer like a pirate."),
		WithGeneration(0.7, 512),
	)
	seedDocument(t, f.store, "proj", "doc.md", []string{"policy content"}, nil, "", time.Now())

	_, err := f.orch.Ask(context.Background(), "proj", "policy?")
	require.NoError(t, err)

	require.Len(t, f.generator.opts, 1)
	assert.Equal(t, "Answer like a pirate.", f.generator.opts[0].SystemPrompt)
	assert.InDelta(t, 0.7, f.generator.opts[0].Temperature, 1e-9)
	assert.Equal(t, 512, f.generator.opts[0].MaxTokens)
}

func TestAsk_ContextBounded(t *testing.T) {
	f := newQueryFixture(t, WithMaxContextChars(300))

	// Several relevant chunks, each sizeable: only the best fit.
	contents := []string{
		"policy " + strings.Repeat("alpha ", 30),
		"policy " + strings.Repeat("beta ", 30),
		"policy " + strings.Repeat("gamma ", 30),
	}
	seedDocument(t, f.store, "proj", "doc.md", contents, nil, "", time.Now())

	reply, err := f.orch.Ask(context.Background(), "proj", "policy?")
	require.NoError(t, err)

	require.Len(t, f.generator.prompts, 1)
	assert.Less(t, len(f.generator.prompts[0]), 300+100)
	assert.NotEmpty(t, reply.Sources)
	assert.Less(t, len(reply.Sources), len(contents))
}

func TestAsk_ContextBoundCountsRunes(t *testing.T) {
	f := newQueryFixture(t, WithMaxContextChars(250))

	// Two chunks of two-byte runes: about 100 runes each but 180 bytes.
	// A byte-based bound would drop the second chunk; the rune bound
	// fits both.
	contents := []string{
		"policy " + strings.Repeat("ä", 80),
		"policy " + strings.Repeat("ö", 80),
	}
	seedDocument(t, f.store, "proj", "doc.md", contents, nil, "", time.Now())

	reply, err := f.orch.Ask(context.Background(), "proj", "policy?")
	require.NoError(t, err)

	assert.Len(t, reply.Sources, 2)
	require.Len(t, f.generator.prompts, 1)
	assert.Contains(t, f.generator.prompts[0], "ä")
	assert.Contains(t, f.generator.prompts[0], "ö")
}

func TestAsk_TopResultAlwaysIncluded(t *testing.T) {
	f := newQueryFixture(t, WithMaxContextChars(50))
	seedDocument(t, f.store, "proj", "doc.md",
		[]string{"policy " + strings.Repeat("text ", 100)}, nil, "", time.Now())

	reply, err := f.orch.Ask(context.Background(), "proj", "policy?")
	require.NoError(t, err)

	// The single best chunk is truncated into the prompt, not dropped.
	require.Len(t, reply.Sources, 1)
	assert.Contains(t, f.generator.prompts[0], "policy")
}

func TestClearHistory(t *testing.T) {
	f := newQueryFixture(t)
	seedDocument(t, f.store, "proj", "doc.md", []string{"policy content"}, nil, "", time.Now())

	_, err := f.orch.Ask(context.Background(), "proj", "policy?")
	require.NoError(t, err)

	require.NoError(t, f.orch.ClearHistory(context.Background(), "proj"))
	history, err := f.orch.History(context.Background(), "proj")
	require.NoError(t, err)
	assert.Empty(t, history)
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driven"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driving"
	"github.com/keepsake-labs/recall-cli/internal/logger"
)

// Ensure QueryOrchestrator implements the interface.
var _ driving.QueryService = (*QueryOrchestrator)(nil)

// queryState tracks a question through the answer pipeline.
type queryState string

const (
	stateReceived         queryState = "received"
	stateSearching        queryState = "searching"
	stateNoContext        queryState = "no_context"
	stateContextFound     queryState = "context_found"
	stateGenerating       queryState = "generating"
	stateAnswered         queryState = "answered"
	stateGenerationFailed queryState = "generation_failed"
)

// DefaultSystemPrompt instructs the model to stay inside the retrieved
// context. Overridable via settings.
const DefaultSystemPrompt = "You are a careful assistant answering questions about the user's own documents. " +
	"Answer using only the provided context. " +
	"If the context does not contain the answer, say you do not have enough information. " +
	"Cite which document each part of your answer came from."

// DefaultMaxContextChars bounds the combined retrieved context handed to
// the generation provider.
const DefaultMaxContextChars = 12000

// noContextReply is returned when no chunk clears the similarity
// threshold. Declining beats hallucinating from an empty prompt.
const noContextReply = "I don't have enough information in the knowledge base to answer that. " +
	"Try rephrasing the question or ingesting more documents."

// noDocumentsReply guides the user when the project is empty.
const noDocumentsReply = "There are no documents in this project yet. " +
	"Ingest a document first, then ask again."

// emptyQuestionReply guides the user on blank input.
const emptyQuestionReply = "Please enter a question."

// QueryOrchestrator answers questions from retrieved context: search,
// assemble a bounded context block, generate, meter, and append the
// exchange to chat history.
type QueryOrchestrator struct {
	search    driving.SearchService
	generator driven.GenerationService
	docStore  driven.DocumentStore
	chatStore driven.ChatStore
	budget    driving.BudgetService

	searchOpts      domain.SearchOptions
	systemPrompt    string
	temperature     float64
	maxTokens       int
	maxContextChars int
}

// QueryOption configures the orchestrator.
type QueryOption func(*QueryOrchestrator)

// WithSearchOptions sets the retrieval configuration used for every query.
func WithSearchOptions(opts domain.SearchOptions) QueryOption {
	return func(o *QueryOrchestrator) {
		o.searchOpts = opts
	}
}

// WithSystemPrompt overrides the default answer instruction.
func WithSystemPrompt(prompt string) QueryOption {
	return func(o *QueryOrchestrator) {
		if strings.TrimSpace(prompt) != "" {
			o.systemPrompt = prompt
		}
	}
}

// WithGeneration sets sampling parameters for the generation provider.
func WithGeneration(temperature float64, maxTokens int) QueryOption {
	return func(o *QueryOrchestrator) {
		o.temperature = temperature
		o.maxTokens = maxTokens
	}
}

// WithMaxContextChars bounds the assembled context block.
func WithMaxContextChars(limit int) QueryOption {
	return func(o *QueryOrchestrator) {
		if limit > 0 {
			o.maxContextChars = limit
		}
	}
}

// NewQueryOrchestrator creates a query orchestrator.
// The generator and budget service are optional; without a generator,
// Ask fails with domain.ErrGenerationUnavailable while search-only use
// remains possible elsewhere.
func NewQueryOrchestrator(
	search driving.SearchService,
	generator driven.GenerationService,
	docStore driven.DocumentStore,
	chatStore driven.ChatStore,
	budget driving.BudgetService,
	opts ...QueryOption,
) *QueryOrchestrator {
	o := &QueryOrchestrator{
		search:          search,
		generator:       generator,
		docStore:        docStore,
		chatStore:       chatStore,
		budget:          budget,
		searchOpts:      domain.SearchOptions{}.Normalised(),
		systemPrompt:    DefaultSystemPrompt,
		maxContextChars: DefaultMaxContextChars,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Ask runs the full pipeline for one question:
//
//	Received -> Searching -> (NoContext | ContextFound) ->
//	Generating -> (Answered | GenerationFailed)
//
// Guidance and failure replies are normal outcomes, not errors; the chat
// session stays usable after any of them.
func (o *QueryOrchestrator) Ask(ctx context.Context, projectID, question string) (*domain.ChatMessage, error) {
	logger.Section("Query Execution")
	state := stateReceived

	question = strings.TrimSpace(question)
	if question == "" {
		// Nothing worth recording in history.
		logger.Debug("Blank question, returning guidance")
		return o.reply(projectID, emptyQuestionReply, nil, nil), nil
	}

	if o.generator == nil {
		return nil, domain.ErrGenerationUnavailable
	}

	stats, err := o.docStore.Stats(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("check project documents: %w", err)
	}
	if stats.DocumentCount == 0 {
		logger.Info("Project %s has no documents, declining", projectID)
		return o.record(ctx, projectID, question, o.reply(projectID, noDocumentsReply, nil, nil))
	}

	state = o.transition(state, stateSearching)
	results, err := o.search.Search(ctx, projectID, question, o.searchOpts)
	if err != nil {
		return nil, fmt.Errorf("search context: %w", err)
	}

	if len(results) == 0 {
		o.transition(state, stateNoContext)
		return o.record(ctx, projectID, question, o.reply(projectID, noContextReply, nil, nil))
	}
	state = o.transition(state, stateContextFound)

	contextBlock, used := o.assembleContext(results)
	logger.Debug("Context: %d chunks, %d chars", len(used), len(contextBlock))

	state = o.transition(state, stateGenerating)
	prompt := buildPrompt(contextBlock, question)

	start := time.Now()
	generated, err := o.generator.Generate(ctx, prompt, driven.GenerateOptions{
		SystemPrompt: o.systemPrompt,
		Temperature:  o.temperature,
		MaxTokens:    o.maxTokens,
	})
	if err != nil {
		o.transition(state, stateGenerationFailed)
		logger.Warn("Generation failed: %v", err)
		failure := fmt.Sprintf("I couldn't generate an answer: %v. Your documents are intact; please try again.", err)
		return o.record(ctx, projectID, question, o.reply(projectID, failure, nil, nil))
	}
	o.transition(state, stateAnswered)

	usage := &domain.MessageUsage{
		TokensUsed: generated.TokensUsed,
		LatencyMs:  generated.LatencyMs,
		Model:      generated.Model,
	}
	if usage.LatencyMs == 0 {
		usage.LatencyMs = time.Since(start).Milliseconds()
	}
	o.meterGeneration(ctx, projectID, usage)

	return o.record(ctx, projectID, question, o.reply(projectID, generated.Text, used, usage))
}

// History returns the project's chat history in order.
func (o *QueryOrchestrator) History(ctx context.Context, projectID string) ([]domain.ChatMessage, error) {
	return o.chatStore.ListMessages(ctx, projectID)
}

// ClearHistory removes the project's chat history. Messages are
// append-only otherwise.
func (o *QueryOrchestrator) ClearHistory(ctx context.Context, projectID string) error {
	return o.chatStore.ClearMessages(ctx, projectID)
}

// assembleContext joins retrieved chunks (already in score order) into a
// bounded block, dropping lowest-scored chunks first when the combined
// text would exceed the provider's input budget. The top result is
// always included, truncated if it alone exceeds the budget. The budget
// is measured in runes throughout so multi-byte text is bounded the same
// way it is truncated.
func (o *QueryOrchestrator) assembleContext(results []domain.SearchResult) (string, []domain.SearchResult) {
	var block strings.Builder
	used := make([]domain.SearchResult, 0, len(results))

	total := 0
	for i, res := range results {
		entry := fmt.Sprintf("[%d] %s\n%s\n\n", i+1, res.DocumentName, res.Chunk.Content)
		size := utf8.RuneCountInString(entry)

		if total+size > o.maxContextChars {
			if i == 0 {
				runes := []rune(entry)
				if len(runes) > o.maxContextChars {
					runes = runes[:o.maxContextChars]
				}
				block.WriteString(string(runes))
				used = append(used, res)
			}
			break
		}

		block.WriteString(entry)
		total += size
		used = append(used, res)
	}

	return block.String(), used
}

// meterGeneration records generation usage and fills in the computed
// cost. Metering failures are logged, not fatal to the answer.
func (o *QueryOrchestrator) meterGeneration(ctx context.Context, projectID string, usage *domain.MessageUsage) {
	if o.budget == nil {
		return
	}
	rec, err := o.budget.Record(ctx, projectID, domain.OpGeneration, int64(usage.TokensUsed))
	if err != nil {
		logger.Warn("Failed to record generation usage: %v", err)
		return
	}
	usage.Cost = rec.Cost

	if status, err := o.budget.Status(ctx, projectID); err == nil {
		for _, alert := range status.Alerts {
			logger.Warn("Budget threshold crossed: %d%% (spend %.4f of %.2f)",
				alert.Threshold, alert.Spend, alert.Limit)
		}
	}
}

// record appends the user question and the assistant reply to history
// and returns the reply. History grows by exactly two per answered call.
func (o *QueryOrchestrator) record(
	ctx context.Context, projectID, question string, reply *domain.ChatMessage,
) (*domain.ChatMessage, error) {
	userMsg := &domain.ChatMessage{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Role:      domain.RoleUser,
		Content:   question,
		CreatedAt: time.Now().UTC(),
	}
	if err := o.chatStore.AppendMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}
	if err := o.chatStore.AppendMessage(ctx, reply); err != nil {
		return nil, fmt.Errorf("append assistant message: %w", err)
	}
	return reply, nil
}

// reply builds an assistant message.
func (o *QueryOrchestrator) reply(
	projectID, content string, sources []domain.SearchResult, usage *domain.MessageUsage,
) *domain.ChatMessage {
	return &domain.ChatMessage{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Role:      domain.RoleAssistant,
		Content:   content,
		Sources:   sources,
		Usage:     usage,
		CreatedAt: time.Now().UTC(),
	}
}

// transition logs a state change and returns the new state.
func (o *QueryOrchestrator) transition(from, to queryState) queryState {
	logger.Debug("Query state: %s -> %s", from, to)
	return to
}

// buildPrompt lays out the retrieved context ahead of the question.
func buildPrompt(contextBlock, question string) string {
	return fmt.Sprintf("Context:\n%s\nQuestion: %s", contextBlock, question)
}

// Command recall is a local retrieval-augmented question answering CLI.
// It wires the storage, AI and budgeting adapters into the core
// services and hands control to the cli package.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/keepsake-labs/recall-cli/internal/adapters/driven/ai"
	configfile "github.com/keepsake-labs/recall-cli/internal/adapters/driven/config/file"
	"github.com/keepsake-labs/recall-cli/internal/adapters/driven/pricing"
	"github.com/keepsake-labs/recall-cli/internal/adapters/driven/storage/sqlite"
	"github.com/keepsake-labs/recall-cli/internal/adapters/driving/cli"
	"github.com/keepsake-labs/recall-cli/internal/chunker"
	"github.com/keepsake-labs/recall-cli/internal/core/domain"
	"github.com/keepsake-labs/recall-cli/internal/core/services"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; environment wins over it either way.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settingsStore, err := configfile.NewSettingsStore("")
	if err != nil {
		return fmt.Errorf("opening settings: %w", err)
	}
	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	applyEnvOverrides(&settings)

	store, err := sqlite.NewStore("", settings.Storage.CapacityBytes)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	// A failing provider degrades the session rather than blocking it:
	// ingestion and keyword search work without embeddings, and ask
	// reports generation as unavailable.
	embedder, err := ai.CreateAndValidateEmbeddingService(settings.Embedding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	generator, err := ai.CreateAndValidateGenerationService(settings.Generation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	ch, err := chunker.New(
		chunker.WithSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)
	if err != nil {
		return fmt.Errorf("configuring chunker: %w", err)
	}

	ledger := services.NewLedger(
		store.UsageStore(),
		pricing.NewTable(settings.Pricing),
		domain.BudgetConfig{MonthlyLimit: settings.Budget.MonthlyLimit},
	)

	ingest := services.NewIngestPipeline(store.DocumentStore(), embedder, ch, ledger)
	search := services.NewSearchEngine(store.DocumentStore(), embedder)
	documents := services.NewDocumentService(store.DocumentStore())

	queryOpts := []services.QueryOption{
		services.WithSearchOptions(settings.Search.Options()),
	}
	if settings.SystemPrompt != "" {
		queryOpts = append(queryOpts, services.WithSystemPrompt(settings.SystemPrompt))
	}
	if settings.Generation.Temperature > 0 || settings.Generation.MaxTokens > 0 {
		queryOpts = append(queryOpts,
			services.WithGeneration(settings.Generation.Temperature, settings.Generation.MaxTokens))
	}
	query := services.NewQueryOrchestrator(
		search, generator, store.DocumentStore(), store.ChatStore(), ledger, queryOpts...,
	)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Ingest:        ingest,
		Search:        search,
		Query:         query,
		Budget:        ledger,
		Document:      documents,
		SettingsStore: settingsStore,
		Settings:      settings,
	})

	return cli.ExecuteContext(ctx)
}

// applyEnvOverrides lets API keys come from the environment so they
// never have to live in the config file.
func applyEnvOverrides(settings *domain.AppSettings) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if settings.Embedding.Provider == domain.AIProviderOpenAI && settings.Embedding.APIKey == "" {
			settings.Embedding.APIKey = key
		}
		if settings.Generation.Provider == domain.AIProviderOpenAI && settings.Generation.APIKey == "" {
			settings.Generation.APIKey = key
		}
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		if settings.Generation.Provider == domain.AIProviderAnthropic && settings.Generation.APIKey == "" {
			settings.Generation.APIKey = key
		}
	}
}

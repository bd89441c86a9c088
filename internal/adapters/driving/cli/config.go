package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and configure AI providers, chunking, storage and budget
settings. Run without arguments to show the current configuration.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets one configuration value and saves the file. Keys:

  embedding.provider      hashing, ollama or openai
  embedding.model         embedding model name
  embedding.base_url      embedding API endpoint
  embedding.api_key       embedding API key
  generation.provider     ollama, openai or anthropic
  generation.model        generation model name
  generation.base_url     generation API endpoint
  generation.api_key      generation API key
  search.algorithm        keyword, semantic or hybrid
  chunking.size           maximum chunk length in characters
  chunking.overlap        characters shared with the previous chunk
  storage.capacity_bytes  storage ceiling in bytes (0 = unlimited)
  budget.monthly_limit    monthly spend limit (0 = no alerts)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	if settings.Embedding.Model != "" {
		cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
	}
	cmd.Printf("  Status: %s\n", configStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[Generation]")
	cmd.Printf("  Provider: %s\n", settings.Generation.Provider.Description())
	if settings.Generation.Model != "" {
		cmd.Printf("  Model: %s\n", settings.Generation.Model)
	}
	if settings.Generation.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Generation.APIKey))
	}
	cmd.Printf("  Status: %s\n", configStatus(settings.Generation.IsConfigured()))
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Algorithm: %s\n", settings.Search.Algorithm)
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Size: %d  Overlap: %d\n", settings.Chunking.Size, settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Storage]")
	if settings.Storage.CapacityBytes > 0 {
		cmd.Printf("  Capacity: %d bytes\n", settings.Storage.CapacityBytes)
	} else {
		cmd.Println("  Capacity: unlimited")
	}
	cmd.Println()

	cmd.Println("[Budget]")
	if settings.Budget.MonthlyLimit > 0 {
		cmd.Printf("  Monthly limit: %.4f\n", settings.Budget.MonthlyLimit)
	} else {
		cmd.Println("  Monthly limit: not set")
	}

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	key, value := args[0], args[1]
	if err := applySetting(&settings, key, value); err != nil {
		return err
	}

	if err := settingsStore.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Set %s. Restart any running watch or mcp session to apply.\n", key)
	return nil
}

func applySetting(settings *domain.AppSettings, key, value string) error {
	switch key {
	case "embedding.provider":
		provider := domain.AIProvider(value)
		if !provider.IsValid() {
			return fmt.Errorf("unknown provider %q", value)
		}
		settings.Embedding.Provider = provider
	case "embedding.model":
		settings.Embedding.Model = value
	case "embedding.base_url":
		settings.Embedding.BaseURL = value
	case "embedding.api_key":
		settings.Embedding.APIKey = value
	case "generation.provider":
		provider := domain.AIProvider(value)
		if !provider.IsValid() || provider == domain.AIProviderHashing {
			return fmt.Errorf("unknown generation provider %q", value)
		}
		settings.Generation.Provider = provider
	case "generation.model":
		settings.Generation.Model = value
	case "generation.base_url":
		settings.Generation.BaseURL = value
	case "generation.api_key":
		settings.Generation.APIKey = value
	case "search.algorithm":
		algorithm := domain.SearchAlgorithm(value)
		if !algorithm.IsValid() {
			return fmt.Errorf("unknown algorithm %q", value)
		}
		settings.Search.Algorithm = algorithm
	case "chunking.size":
		size, err := strconv.Atoi(value)
		if err != nil || size <= 0 {
			return fmt.Errorf("invalid chunk size %q", value)
		}
		settings.Chunking.Size = size
	case "chunking.overlap":
		overlap, err := strconv.Atoi(value)
		if err != nil || overlap < 0 {
			return fmt.Errorf("invalid chunk overlap %q", value)
		}
		settings.Chunking.Overlap = overlap
	case "storage.capacity_bytes":
		capacity, err := strconv.ParseInt(value, 10, 64)
		if err != nil || capacity < 0 {
			return fmt.Errorf("invalid capacity %q", value)
		}
		settings.Storage.CapacityBytes = capacity
	case "budget.monthly_limit":
		limit, err := strconv.ParseFloat(value, 64)
		if err != nil || limit < 0 {
			return fmt.Errorf("invalid limit %q", value)
		}
		settings.Budget.MonthlyLimit = limit
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func configStatus(configured bool) string {
	if configured {
		return "configured"
	}
	return "not configured"
}

func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", 4) + key[len(key)-4:]
}

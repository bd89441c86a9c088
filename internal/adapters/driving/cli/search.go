package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
)

var (
	searchLimit     int
	searchAlgorithm string
	searchThreshold float64
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the project's documents",
	Long: `Ranks the project's chunks against the query. Hybrid search blends
keyword overlap with embedding similarity; results below the threshold
are dropped entirely.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = default)")
	searchCmd.Flags().StringVar(&searchAlgorithm, "algorithm", "", "ranking algorithm: keyword, semantic or hybrid")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "minimum score to include a result")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := appSettings.Search.Options()
	if searchLimit > 0 {
		opts.TopK = searchLimit
	}
	if searchThreshold > 0 {
		opts.SimilarityThreshold = searchThreshold
	}
	if searchAlgorithm != "" {
		algorithm := domain.SearchAlgorithm(searchAlgorithm)
		if !algorithm.IsValid() {
			return fmt.Errorf("unknown algorithm %q", searchAlgorithm)
		}
		opts.Algorithm = algorithm
	}

	results, err := searchService.Search(cmd.Context(), projectFlag, args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s #%d (%.2f)\n", i+1, results[i].DocumentName, results[i].Chunk.Index, results[i].Score)
		if results[i].Snippet != "" {
			cmd.Printf("      %s\n", results[i].Snippet)
		}
		cmd.Println()
	}

	return nil
}

// Package cli implements the Recall command-line interface.
//
// Commands depend on the driving ports only; main wires concrete
// services in before Execute runs.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driven"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driving"
	"github.com/keepsake-labs/recall-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services the commands run against, injected by main.
var (
	ingestService   driving.IngestService
	searchService   driving.SearchService
	queryService    driving.QueryService
	budgetService   driving.BudgetService
	documentService driving.DocumentService
	settingsStore   driven.SettingsStore

	appSettings = domain.DefaultAppSettings()
)

var (
	verboseFlag bool
	projectFlag string
)

// Services bundles everything the CLI needs from the core.
type Services struct {
	Ingest   driving.IngestService
	Search   driving.SearchService
	Query    driving.QueryService
	Budget   driving.BudgetService
	Document driving.DocumentService

	// SettingsStore backs the config command.
	SettingsStore driven.SettingsStore

	// Settings is the snapshot the session was wired with.
	Settings domain.AppSettings
}

// SetServices injects the core services the commands run against.
func SetServices(s Services) {
	ingestService = s.Ingest
	searchService = s.Search
	queryService = s.Query
	budgetService = s.Budget
	documentService = s.Document
	settingsStore = s.SettingsStore
	appSettings = s.Settings
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Local retrieval-augmented question answering",
	Long: `Recall ingests your documents into a local store, searches them with
keyword, semantic or hybrid ranking, and answers questions grounded in
the retrieved context. Every billable operation is metered against a
monthly budget.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", "default", "project to operate on")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context, so
// long-running commands stop on interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

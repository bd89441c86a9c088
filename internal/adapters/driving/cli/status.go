package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the project's store and budget at a glance",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	stats, err := documentService.Stats(cmd.Context(), projectFlag)
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	cmd.Printf("Project:    %s\n", projectFlag)
	cmd.Printf("Documents:  %d\n", stats.DocumentCount)
	cmd.Printf("Chunks:     %d (%d embedded)\n", stats.ChunkCount, stats.EmbeddingCount)
	if stats.CapacityBytes > 0 {
		cmd.Printf("Storage:    %d of %d bytes\n", stats.BytesUsed, stats.CapacityBytes)
	} else {
		cmd.Printf("Storage:    %d bytes (unlimited)\n", stats.BytesUsed)
	}

	// The budget section is optional; a store-only setup still has status.
	if budgetService == nil {
		return nil
	}

	status, err := budgetService.Status(cmd.Context(), projectFlag)
	if err != nil {
		return fmt.Errorf("budget status failed: %w", err)
	}

	if status.Limit > 0 {
		cmd.Printf("Spend:      %.4f of %.4f (%.1f%%)\n", status.Spend, status.Limit, status.Utilization)
	} else {
		cmd.Printf("Spend:      %.4f (no limit)\n", status.Spend)
	}
	if !status.WithinBudget {
		cmd.Println("Budget exhausted.")
	}
	return nil
}

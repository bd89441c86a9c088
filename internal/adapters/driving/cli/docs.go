package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage ingested documents",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the project's documents",
	Args:  cobra.NoArgs,
	RunE:  runDocsList,
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete [document-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsDelete,
}

var docsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show storage usage for the project",
	Args:  cobra.NoArgs,
	RunE:  runDocsStats,
}

var docsEvictCmd = &cobra.Command{
	Use:   "evict",
	Short: "Remove the oldest document to free capacity",
	Args:  cobra.NoArgs,
	RunE:  runDocsEvict,
}

func init() {
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsDeleteCmd)
	docsCmd.AddCommand(docsStatsCmd)
	docsCmd.AddCommand(docsEvictCmd)
	rootCmd.AddCommand(docsCmd)
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(cmd.Context(), projectFlag)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents.")
		return nil
	}

	for _, doc := range docs {
		cmd.Printf("%s  %s  %d bytes  %s\n",
			doc.ID, doc.Name, doc.SizeBytes, doc.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}

func runDocsStats(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	stats, err := documentService.Stats(cmd.Context(), projectFlag)
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	cmd.Printf("Documents:  %d\n", stats.DocumentCount)
	cmd.Printf("Chunks:     %d (%d embedded)\n", stats.ChunkCount, stats.EmbeddingCount)
	cmd.Printf("Bytes used: %d\n", stats.BytesUsed)
	if stats.CapacityBytes > 0 {
		cmd.Printf("Capacity:   %d (%d remaining)\n", stats.CapacityBytes, stats.Remaining())
	} else {
		cmd.Println("Capacity:   unlimited")
	}
	return nil
}

func runDocsEvict(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Evict(cmd.Context(), projectFlag)
	if err != nil {
		return fmt.Errorf("evict failed: %w", err)
	}
	cmd.Printf("Evicted %s (%s)\n", doc.Name, doc.ID)
	return nil
}

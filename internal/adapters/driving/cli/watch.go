package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keepsake-labs/recall-cli/internal/adapters/driven/source/fs"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driving"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and ingest files as they change",
	Long: `Ingests every recognised text file under the directory, then keeps
watching it and re-ingests files as they are created or modified.
Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	source := fs.New(projectFlag, dir, fs.WithWatch())
	defer source.Close()

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)

	return ingestService.IngestFrom(cmd.Context(), source, func(res driving.IngestResult) {
		if res.Err != nil {
			cmd.PrintErrf("failed: %v\n", res.Err)
			return
		}
		cmd.Printf("ingested %s (%d chunks)\n", res.Document.Name, res.ChunkCount)
	})
}

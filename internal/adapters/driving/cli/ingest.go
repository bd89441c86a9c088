package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/keepsake-labs/recall-cli/internal/adapters/driven/source/fs"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driven"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driving"
	"github.com/keepsake-labs/recall-cli/internal/logger"
	"github.com/keepsake-labs/recall-cli/internal/normalisers"
)

var ingestName string

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]...",
	Short: "Ingest files or directories into the project",
	Long: `Chunks, embeds and stores documents in the local store. Passing a
directory ingests every recognised text file under it. A failed
ingestion persists nothing and is safe to retry.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestName, "name", "", "display name override (single file only)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if ingestName != "" && len(args) > 1 {
		return errors.New("--name applies to a single file")
	}

	var stored, failed int
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		if info.IsDir() {
			s, f, err := ingestDirectory(cmd, path)
			stored += s
			failed += f
			if err != nil {
				return err
			}
			continue
		}

		if err := ingestFile(cmd, path); err != nil {
			cmd.PrintErrf("failed: %s: %v\n", path, err)
			failed++
			continue
		}
		stored++
	}

	cmd.Printf("Ingested %d document(s)", stored)
	if failed > 0 {
		cmd.Printf(", %d failed", failed)
	}
	cmd.Println()

	if failed > 0 {
		return fmt.Errorf("%d document(s) failed to ingest", failed)
	}
	return nil
}

func ingestFile(cmd *cobra.Command, path string) error {
	contentType, ok := fs.DetectContentType(path)
	if !ok {
		return fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	name := ingestName
	if name == "" {
		name = filepath.Base(path)
	}

	doc, err := ingestService.Ingest(cmd.Context(), driven.IncomingDocument{
		ProjectID:   projectFlag,
		Name:        name,
		Content:     normalisers.Default().Normalise(contentType, string(content)),
		ContentType: contentType,
	})
	if err != nil {
		return err
	}

	logger.Info("stored %s as %s", name, doc.ID)
	return nil
}

func ingestDirectory(cmd *cobra.Command, dir string) (stored, failed int, err error) {
	source := fs.New(projectFlag, dir)
	defer source.Close()

	err = ingestService.IngestFrom(cmd.Context(), source, func(res driving.IngestResult) {
		if res.Err != nil {
			cmd.PrintErrf("failed: %v\n", res.Err)
			failed++
			return
		}
		logger.Info("stored %s (%d chunks)", res.Document.Name, res.ChunkCount)
		stored++
	})
	return stored, failed, err
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/documint-labs/documint/internal/core/ports/driving"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [project] [file]...",
	Short: "Add documents to a project",
	Long: `Adds one or more extracted layout files to the named project,
creating the project on first use. Documents already in the project
(identical content) are skipped, so re-running an ingest is safe.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	projectName := args[0]

	files := make([]driving.IngestFile, 0, len(args)-1)
	for _, path := range args[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		files = append(files, driving.IngestFile{
			Name: filepath.Base(path),
			Data: data,
		})
	}

	result, err := ingestService.Ingest(context.Background(), projectName, files)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	printIngestResult(cmd, result)
	return nil
}

func printIngestResult(cmd *cobra.Command, result *driving.IngestResult) {
	for _, doc := range result.Added {
		cmd.Printf("  added    %s (%d pages)\n", doc.Name, doc.PageCount)
	}
	for _, name := range result.SkippedDuplicates {
		cmd.Printf("  skipped  %s (already ingested)\n", name)
	}
	for _, failure := range result.Failed {
		cmd.Printf("  failed   %s: %v\n", failure.Name, failure.Err)
	}
	cmd.Printf("%d added, %d skipped, %d failed. Project now has %d chunks.\n",
		len(result.Added), len(result.SkippedDuplicates), len(result.Failed),
		result.ChunkCount)
}

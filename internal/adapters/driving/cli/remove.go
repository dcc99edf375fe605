package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/documint-labs/documint/internal/core/domain"
)

var removeCmd = &cobra.Command{
	Use:   "remove [project] [document]",
	Short: "Remove a document from a project",
	Long: `Removes the named document and all of its chunks from the project.
The project itself survives losing its last document.`,
	Args: cobra.ExactArgs(2),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	result, err := ingestService.RemoveDocument(context.Background(), args[0], args[1])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no document named %q in project %q", args[1], args[0])
		}
		return fmt.Errorf("remove failed: %w", err)
	}

	cmd.Printf("Removed %s. %d documents and %d chunks remain.\n",
		args[1], result.RemainingDocuments, result.RemainingChunks)
	return nil
}

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/documint-labs/documint/internal/core/domain"
)

var (
	searchPersona string
	searchTask    string
	searchK       int
	searchJSON    bool
	searchTimeout time.Duration
)

var searchCmd = &cobra.Command{
	Use:   "search [project]",
	Short: "Run persona-driven retrieval over a project",
	Long: `Runs hybrid retrieval (BM25 + embeddings) over the project's chunks
for the given persona and task, and prints the diversity-constrained
top-k sections. Without an embedding provider the query is scored by
BM25 alone.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchPersona, "persona", "p", "", "who is asking (e.g. \"Travel Planner\")")
	searchCmd.Flags().StringVarP(&searchTask, "task", "t", "", "what they need to do")
	searchCmd.Flags().IntVarP(&searchK, "top", "n", 5, "number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().DurationVar(&searchTimeout, "timeout", 30*time.Second, "query deadline")
	_ = searchCmd.MarkFlagRequired("task")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil || projectStore == nil {
		return errors.New("retrieval service not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	project, err := projectStore.Load(ctx, args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("project %q does not exist", args[0])
		}
		return fmt.Errorf("loading project: %w", err)
	}

	insight, err := retrievalService.Search(ctx, project, searchPersona, searchTask, searchK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputInsightJSON(cmd, insight)
	}
	return outputInsightTable(cmd, project, insight)
}

func outputInsightJSON(cmd *cobra.Command, insight *domain.Insight) error {
	data, err := json.MarshalIndent(insight, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal insight: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputInsightTable(cmd *cobra.Command, project *domain.Project, insight *domain.Insight) error {
	if len(insight.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	docNames := make(map[string]string, len(project.Documents))
	for _, doc := range project.Documents {
		docNames[doc.ID] = doc.Name
	}

	cmd.Printf("Domain: %s\n", insight.Domain)
	cmd.Println()

	for _, rc := range insight.Results {
		heading := rc.Chunk.Heading
		if heading == "" {
			heading = "(no heading)"
		}

		cmd.Printf("  [%d] %s | %s, p.%d (score %.3f)\n",
			rc.ImportanceRank, heading, docNames[rc.Chunk.DocumentID],
			rc.Chunk.PageNumber, rc.HybridScore)

		snippet := rc.Chunk.Content
		if len(snippet) > 160 {
			snippet = snippet[:160] + "..."
		}
		cmd.Printf("      %s\n", snippet)
		cmd.Println()
	}

	return nil
}
